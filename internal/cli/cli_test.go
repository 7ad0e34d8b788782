package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/config"
)

// runCommand executes the root command with args against a test workspace
// and returns its combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestProjectsCommand(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects", r.URL.Path)
		calls.Add(1)
		_ = json.NewEncoder(w).Encode([]api.Project{
			{ID: "p1", Name: "Website"},
			{ID: "p2", Name: "Old Site", Archived: true},
		})
	}))
	defer srv.Close()

	t.Setenv(config.EnvConfigDir, t.TempDir())
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvAPIToken, "secret")
	t.Setenv(config.EnvWorkspace, "acme")

	out, err := runCommand(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Website")
	assert.NotContains(t, out, "Old Site")
	assert.Equal(t, int32(1), calls.Load())

	t.Run("SecondInvocationServedFromCache", func(t *testing.T) {
		// A fresh root command simulates a new CLI invocation; the response
		// comes from the persistent cache, not the server.
		out, err := runCommand(t, "projects")
		require.NoError(t, err)
		assert.Contains(t, out, "Website")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("NoCacheBypasses", func(t *testing.T) {
		_, err := runCommand(t, "projects", "--no-cache")
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("ArchivedFlag", func(t *testing.T) {
		out, err := runCommand(t, "projects", "--archived")
		require.NoError(t, err)
		assert.Contains(t, out, "Old Site")
	})

	t.Run("JSONOutput", func(t *testing.T) {
		out, err := runCommand(t, "projects", "-o", "json")
		require.NoError(t, err)

		var projects []api.Project
		require.NoError(t, json.Unmarshal([]byte(out), &projects))
		require.NotEmpty(t, projects)
		assert.Equal(t, "p1", projects[0].ID)
	})
}

func TestCacheCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]api.Project{{ID: "p1", Name: "Website"}})
	}))
	defer srv.Close()

	t.Setenv(config.EnvConfigDir, t.TempDir())
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvWorkspace, "acme")

	_, err := runCommand(t, "projects")
	require.NoError(t, err)

	out, err := runCommand(t, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"cache_size": 1`)

	out, err = runCommand(t, "cache", "clear", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")

	out, err = runCommand(t, "cache", "stats", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"cache_size": 0`)
}

func TestStartStopCommands(t *testing.T) {
	entriesPosted := 0
	currentCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/time_entries" && r.Method == http.MethodPost:
			entriesPosted++
			var req api.StartRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(api.TimeEntry{ID: "e1", TaskID: req.TaskID})
		case r.URL.Path == "/time_entries/current":
			currentCalls++
			_ = json.NewEncoder(w).Encode(api.TimeEntry{ID: "e1", TaskID: "t1"})
		case r.URL.Path == "/time_entries/e1/stop":
			_ = json.NewEncoder(w).Encode(api.TimeEntry{ID: "e1", TaskID: "t1"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	t.Setenv(config.EnvConfigDir, t.TempDir())
	t.Setenv(config.EnvAPIURL, srv.URL)
	t.Setenv(config.EnvWorkspace, "acme")

	out, err := runCommand(t, "start", "t1", "-d", "fix login")
	require.NoError(t, err)
	assert.Contains(t, out, "Started tracking task t1")
	assert.Equal(t, 1, entriesPosted)

	out, err = runCommand(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "task t1")
	assert.Equal(t, 1, currentCalls)

	// A repeated status is served from the cached snapshot.
	_, err = runCommand(t, "status")
	require.NoError(t, err)
	assert.Equal(t, 1, currentCalls)

	// Stop looks up the running entry live, never from cache.
	out, err = runCommand(t, "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped after")
	assert.Equal(t, 2, currentCalls)

	// Stop invalidated the snapshot, so status asks again.
	_, err = runCommand(t, "status")
	require.NoError(t, err)
	assert.Equal(t, 3, currentCalls)
}

func TestRootValidation(t *testing.T) {
	t.Setenv(config.EnvConfigDir, t.TempDir())

	_, err := runCommand(t, "projects", "--cache-ttl=-5")
	assert.Error(t, err)
}

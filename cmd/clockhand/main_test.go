package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockhand/clockhand/internal/cli"
	"github.com/clockhand/clockhand/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("VersionAvailable", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("RootCommand", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "clockhand", root.Use)

		names := make([]string, 0)
		for _, sub := range root.Commands() {
			names = append(names, sub.Name())
		}
		for _, want := range []string{"projects", "tasks", "start", "stop", "status", "log", "report", "cache"} {
			assert.Contains(t, names, want)
		}
	})
}

package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := renderTable(&buf, []string{"ID", "Name"}, [][]string{
		{"p1", "Website"},
		{"p2", "Mobile App"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "--")
	assert.Contains(t, out, "Website")
	assert.Contains(t, out, "Mobile App")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	err := renderJSON(&buf, map[string]int{"entries": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":3}`, buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{2*time.Hour + 5*time.Minute, "2h05m"},
		{12 * time.Hour, "12h00m"},
		{30 * time.Second, "1m"},
		{0, "0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "formatDuration(%v)", tt.in)
	}
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, day.Year())
	assert.Equal(t, time.March, day.Month())

	_, err = parseDay("15/03/2026")
	assert.Error(t, err)
}

func TestResolveRange(t *testing.T) {
	t.Run("Explicit", func(t *testing.T) {
		from, to, err := resolveRange("2026-03-01", "2026-03-07")
		require.NoError(t, err)
		assert.Equal(t, 1, from.Day())
		// --to is inclusive: the range extends to the end of that day.
		assert.Equal(t, 7, to.Day())
		assert.Equal(t, 23, to.Hour())
	})

	t.Run("DefaultsToLastWeek", func(t *testing.T) {
		from, to, err := resolveRange("", "")
		require.NoError(t, err)
		assert.True(t, from.Before(to))
	})

	t.Run("InvertedRangeFails", func(t *testing.T) {
		_, _, err := resolveRange("2026-03-07", "2026-03-01")
		assert.Error(t, err)
	})
}

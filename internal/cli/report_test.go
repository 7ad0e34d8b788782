package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockhand/clockhand/internal/api"
)

func TestAggregateReport(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := func(d time.Duration) *time.Time {
		e := start.Add(d)
		return &e
	}

	projects := []api.Project{
		{ID: "p1", Name: "Website"},
		{ID: "p2", Name: "Mobile"},
	}
	entries := []api.TimeEntry{
		{ID: "e1", ProjectID: "p1", Start: start, End: end(time.Hour)},
		{ID: "e2", ProjectID: "p1", Start: start, End: end(30 * time.Minute)},
		{ID: "e3", ProjectID: "p2", Start: start, End: end(2 * time.Hour)},
		{ID: "e4", ProjectID: "ghost", Start: start, End: end(10 * time.Minute)},
	}

	rows := aggregateReport(projects, entries)
	require.Len(t, rows, 3)

	// Sorted by total descending.
	assert.Equal(t, "Mobile", rows[0].ProjectName)
	assert.Equal(t, 2*time.Hour, rows[0].Total)

	assert.Equal(t, "Website", rows[1].ProjectName)
	assert.Equal(t, 2, rows[1].Entries)
	assert.Equal(t, 90*time.Minute, rows[1].Total)

	// Unknown projects fall back to the raw ID.
	assert.Equal(t, "ghost", rows[2].ProjectName)

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, aggregateReport(projects, nil))
	})
}

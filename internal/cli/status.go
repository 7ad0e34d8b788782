package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
)

// statusTTL keeps the running-entry snapshot short-lived. A stale "running"
// answer minutes after stopping would be worse than an extra request.
const statusTTL = 30 * time.Second

// NewStatusCmd creates the "status" command, showing the running time entry.
// The snapshot is cached under the entry:current key, which start and stop
// invalidate.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running time entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			entry, err := cache.GetOrFetch(cmd.Context(), env.cache, env.key("entry", "current"),
				func(ctx context.Context) (*api.TimeEntry, error) {
					return env.client.CurrentEntry(ctx)
				}, statusTTL)
			if err != nil {
				return err
			}

			if entry == nil {
				cmd.Println("Nothing is being tracked.")
				return nil
			}

			cmd.Printf("%s task %s for %s\n",
				highlightStyle().Render("Tracking"), entry.TaskID, formatDuration(entry.Duration()))
			if entry.Description != "" {
				cmd.Printf("  %s\n", entry.Description)
			}
			return nil
		},
	}
}

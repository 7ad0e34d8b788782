package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
)

// NewStartCmd creates the "start" command, beginning a new time entry for a
// task. Cached entry listings are invalidated because they no longer reflect
// the workspace.
func NewStartCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start tracking a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			entry, err := env.client.StartEntry(cmd.Context(), api.StartRequest{
				TaskID:      args[0],
				Description: description,
			})
			if err != nil {
				return err
			}

			env.cache.DeletePattern(env.key("entries"))
			env.cache.Delete(env.key("entry", "current"))

			cmd.Printf("Started tracking task %s at %s\n",
				entry.TaskID, entry.Start.Local().Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "entry description")
	return cmd
}

// NewStopCmd creates the "stop" command, stopping the running time entry.
// The running entry is looked up live, never from cache: a stale answer here
// would stop the wrong thing or nothing.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running time entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			current, err := env.client.CurrentEntry(cmd.Context())
			if err != nil {
				return err
			}
			if current == nil {
				cmd.Println("Nothing is being tracked.")
				return nil
			}

			stopped, err := env.client.StopEntry(cmd.Context(), current.ID)
			if err != nil {
				return err
			}

			env.cache.DeletePattern(env.key("entries"))
			env.cache.Delete(env.key("entry", "current"))

			cmd.Printf("Stopped after %s\n", formatDuration(stopped.Duration()))
			return nil
		},
	}
}

// NewLogCmd creates the "log" command, listing time entries in a date range.
func NewLogCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List time entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			from, to, err := resolveRange(fromStr, toStr)
			if err != nil {
				return err
			}

			entries, err := fetchEntries(cmd.Context(), env, from, to)
			if err != nil {
				return err
			}

			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				cmd.Println("No entries in range.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				end := "running"
				if e.End != nil {
					end = e.End.Local().Format("15:04")
				}
				rows = append(rows, []string{
					e.Start.Local().Format("2006-01-02 15:04"),
					end,
					formatDuration(e.Duration()),
					e.ProjectID,
					e.Description,
				})
			}
			return renderTable(cmd.OutOrStdout(),
				[]string{"Start", "End", "Duration", "Project", "Description"}, rows)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start of range (YYYY-MM-DD, default 7 days ago)")
	cmd.Flags().StringVar(&toStr, "to", "", "end of range (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

// fetchEntries loads time entries for a range through the cache.
func fetchEntries(ctx context.Context, env *appEnv, from, to time.Time) ([]api.TimeEntry, error) {
	key := env.key("entries", from.Format("2006-01-02"), to.Format("2006-01-02"))
	return cache.GetOrFetch(ctx, env.cache, key,
		func(ctx context.Context) ([]api.TimeEntry, error) {
			return env.client.Entries(ctx, from, to)
		}, env.ttl)
}

// resolveRange applies the default reporting window: the last seven days up
// to the end of today.
func resolveRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	to := now

	if fromStr != "" {
		day, err := parseDay(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = day
	}
	if toStr != "" {
		day, err := parseDay(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = day.AddDate(0, 0, 1).Add(-time.Second)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	return from, to, nil
}

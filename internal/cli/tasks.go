package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
)

// NewTasksCmd creates the "tasks" command, listing the tasks of one project.
func NewTasksCmd() *cobra.Command {
	var (
		projectID string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks of a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			tasks, err := cache.GetOrFetch(cmd.Context(), env.cache, env.key("tasks", projectID),
				func(ctx context.Context) ([]api.Task, error) {
					return env.client.Tasks(ctx, projectID)
				}, env.ttl)
			if err != nil {
				return err
			}

			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), tasks)
			}
			if len(tasks) == 0 {
				cmd.Println("No tasks found.")
				return nil
			}

			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				state := "active"
				if !t.Active {
					state = "done"
				}
				rows = append(rows, []string{t.ID, t.Name, state})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "State"}, rows)
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project ID (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
)

// NewProjectsCmd creates the "projects" command, listing the workspace's
// projects. Results are cached, so repeated invocations within the TTL skip
// the network entirely.
func NewProjectsCmd() *cobra.Command {
	var (
		output      string
		showArchive bool
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			projects, err := cache.GetOrFetch(cmd.Context(), env.cache, env.key("projects"),
				func(ctx context.Context) ([]api.Project, error) {
					return env.client.Projects(ctx)
				}, env.ttl)
			if err != nil {
				return err
			}

			if !showArchive {
				active := projects[:0]
				for _, p := range projects {
					if !p.Archived {
						active = append(active, p)
					}
				}
				projects = active
			}

			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), projects)
			}
			if len(projects) == 0 {
				cmd.Println("No projects found.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{p.ID, p.Name, p.Client})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Client"}, rows)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	cmd.Flags().BoolVar(&showArchive, "archived", false, "include archived projects")
	return cmd
}

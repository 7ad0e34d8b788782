package cli

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clockhand/clockhand/internal/api"
	"github.com/clockhand/clockhand/internal/cache"
)

// reportRow is one project's aggregated tracked time.
type reportRow struct {
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name"`
	Entries     int           `json:"entries"`
	Total       time.Duration `json:"total"`
}

// NewReportCmd creates the "report" command: tracked time per project over a
// date range. Projects and entries are fetched concurrently, both through
// the cache.
func NewReportCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate tracked time per project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			from, to, err := resolveRange(fromStr, toStr)
			if err != nil {
				return err
			}

			var (
				projects []api.Project
				entries  []api.TimeEntry
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var fetchErr error
				projects, fetchErr = cache.GetOrFetch(ctx, env.cache, env.key("projects"),
					func(ctx context.Context) ([]api.Project, error) {
						return env.client.Projects(ctx)
					}, env.ttl)
				return fetchErr
			})
			g.Go(func() error {
				var fetchErr error
				entries, fetchErr = fetchEntries(ctx, env, from, to)
				return fetchErr
			})
			if err := g.Wait(); err != nil {
				return err
			}

			rows := aggregateReport(projects, entries)
			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				cmd.Println("No tracked time in range.")
				return nil
			}

			var grand time.Duration
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					r.ProjectName, strconv.Itoa(r.Entries), formatDuration(r.Total),
				})
				grand += r.Total
			}
			if err := renderTable(cmd.OutOrStdout(),
				[]string{"Project", "Entries", "Total"}, table); err != nil {
				return err
			}

			total := highlightStyle().Render("Total: " + formatDuration(grand))
			cmd.Println()
			cmd.Println(total)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start of range (YYYY-MM-DD, default 7 days ago)")
	cmd.Flags().StringVar(&toStr, "to", "", "end of range (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

// aggregateReport sums entry durations per project, sorted by total
// descending. Entries pointing at unknown projects are kept and labelled by
// their raw project ID.
func aggregateReport(projects []api.Project, entries []api.TimeEntry) []reportRow {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	byProject := make(map[string]*reportRow)
	for _, e := range entries {
		row, ok := byProject[e.ProjectID]
		if !ok {
			name := names[e.ProjectID]
			if name == "" {
				name = e.ProjectID
			}
			row = &reportRow{ProjectID: e.ProjectID, ProjectName: name}
			byProject[e.ProjectID] = row
		}
		row.Entries++
		row.Total += e.Duration()
	}

	rows := make([]reportRow, 0, len(byProject))
	for _, row := range byProject {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].ProjectName < rows[j].ProjectName
	})
	return rows
}

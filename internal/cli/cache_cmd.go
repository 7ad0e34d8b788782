package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the "cache" command group with stats and clear
// subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Response cache maintenance"}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			stats := env.cache.Stats()
			if output == "json" {
				return renderJSON(cmd.OutOrStdout(), stats)
			}
			cmd.Printf("Entries:          %d\n", stats.CacheSize)
			cmd.Printf("Pending fetches:  %d\n", stats.PendingRequests)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newAppEnv(cmd)
			if err != nil {
				return err
			}

			if !force && !Confirm(cmd.OutOrStdout(), os.Stdin, "Clear the response cache?") {
				cmd.Println("Aborted.")
				return nil
			}

			env.cache.Clear()
			cmd.Println("Cache cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "clear without confirmation")
	return cmd
}

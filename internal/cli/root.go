// Package cli implements the clockhand command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clockhand/clockhand/internal/config"
	"github.com/clockhand/clockhand/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the clockhand CLI. It wires
// up logging and the subcommands (projects, tasks, start, stop, log, report,
// cache).
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:     "clockhand",
		Short:   "Track time from the command line",
		Long:    "clockhand: a command-line client for your time-tracking workspace",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
			if cacheTTL < 0 {
				return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
			}

			result, err := setupLogging(cmd)
			if err != nil {
				return err
			}
			logResult = result
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if logResult != nil {
				return logResult.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().Bool("no-cache", false, "bypass the persistent response cache")
	cmd.PersistentFlags().
		Int("cache-ttl", 0, "cache TTL in seconds (0 = use config default)")

	cmd.AddCommand(
		NewProjectsCmd(), NewTasksCmd(),
		NewStartCmd(), NewStopCmd(), NewStatusCmd(), NewLogCmd(),
		NewReportCmd(), NewCacheCmd(),
	)
	return cmd
}

// setupLogging builds the logger from config and the --debug flag, and
// attaches it to the command context so downstream code can recover it with
// logging.FromContext.
func setupLogging(cmd *cobra.Command) (*logging.Result, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging.ToLoggingConfig()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
		logCfg.Format = "console"
		logCfg.File = ""
	}
	if !isTerminal(os.Stderr) && logCfg.Format == "console" {
		// Pipes and CI logs get machine-readable output.
		logCfg.Format = "json"
	}

	result := logging.New(logCfg)
	if result.FallbackReason != "" {
		cmd.PrintErrf("Warning: could not open log file: %s\n", result.FallbackReason)
	}

	logger := logging.ComponentLogger(result.Logger, "cli")
	cmd.SetContext(logger.WithContext(cmd.Context()))
	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return result, nil
}

// commandLogger returns the logger attached by setupLogging.
func commandLogger(cmd *cobra.Command) zerolog.Logger {
	return logging.FromContext(cmd.Context())
}

const rootCmdExample = `  # List projects in your workspace
  clockhand projects

  # List the tasks of a project
  clockhand tasks --project p1

  # Start tracking a task, check on it, then stop it
  clockhand start t42 --description "fix login flow"
  clockhand status
  clockhand stop

  # Show this week's entries
  clockhand log --from 2026-03-02 --to 2026-03-08

  # Aggregate tracked time per project
  clockhand report --from 2026-03-01 --to 2026-03-31

  # Inspect or reset the response cache
  clockhand cache stats
  clockhand cache clear`

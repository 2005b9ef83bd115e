package simulator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/scoreboard/pkg/logger"
	"github.com/spf13/cobra"
)

// NewCommand returns the scoreboard-sim root command.
func NewCommand() *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:   "scoreboard-sim",
		Short: "Drive a live scoreboard with simulated matches",
		Long: `scoreboard-sim starts a set of matches on a running scoreboard, streams
goal-by-goal score events to POST /events, waits until every match shows its
final score, and checks GET /summary against the expected ranking.`,
		Example: `  # Simulate with default settings against a local server
  scoreboard-sim

  # Twenty matches, thirty goals each, finish them at the end
  scoreboard-sim --matches 20 --goals 30 --finish --url http://localhost:8080`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr(), logger.FormatText); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			level := "info"
			if cfg.Verbose {
				level = "debug"
			}
			if err := logger.SetLevelString(level); err != nil {
				return err
			}

			_, err := Run(cmd.Context(), cfg, cmd.OutOrStdout())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", DefaultBaseURL, "Base URL of the service")
	flags.IntVar(&cfg.Matches, "matches", DefaultMatches, "Number of matches to start")
	flags.IntVar(&cfg.Goals, "goals", DefaultGoals, "Goals scored per match")
	flags.IntVar(&cfg.Workers, "workers", DefaultWorkers, "Number of concurrent submitters")
	flags.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	flags.DurationVar(&cfg.SettleTimeout, "settle", DefaultSettleTimeout, "How long to wait for events to be applied")
	flags.Float64Var(&cfg.DuplicateRate, "duplicates", DefaultDuplicateRate, "Fraction of events resent with the same id")
	flags.BoolVar(&cfg.Finish, "finish", false, "Finish every match at the end and verify removal")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "Seed for goal generation (0 picks one from the clock)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

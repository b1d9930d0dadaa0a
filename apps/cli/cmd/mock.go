package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
	"github.com/abdul-hamid-achik/gqltester/packages/mock"
)

var (
	mockPortFlag    int
	mockDelayFlag   string
	mockVerboseFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock [suite...]",
	Short: "Serve fixture expectations as a fake GraphQL server",
	Long: `Start a GraphQL endpoint that answers every query found in the fixtures
with that fixture's expected response. Requests are matched on the query,
ignoring formatting, and on the variables, ignoring key order.

Fixtures whose expectation comes from a regression server are skipped.

Examples:
  gqltester mock
  gqltester mock users --port 4000
  gqltester mock --delay 100ms --verbose`,
	ValidArgsFunction: completeSuites(0),
	RunE:              mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", getEnvInt("GQLTESTER_MOCK_PORT", 4000), "Port to run the mock server on (env: GQLTESTER_MOCK_PORT)")
	mockCmd.Flags().StringVar(&mockDelayFlag, "delay", "0s", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Log every request")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	delay, err := time.ParseDuration(mockDelayFlag)
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if mockVerboseFlag {
		level = "debug"
	}
	logger, err := newLogger(level, 0)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	batches, err := suite.Discover(cfg.TestsDir, args)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithLogger(logger.Named("mock")),
	)

	loaded, skipped, err := server.LoadBatches(cfg.TestsDir, batches)
	if err != nil {
		return withExitCode(ExitParseError, fmt.Errorf("failed to load fixtures: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mock server listening on http://localhost:%d\n", mockPortFlag)
	fmt.Fprintf(cmd.OutOrStdout(), "Fixtures loaded: %d", loaded)
	if skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (%d regression fixtures skipped)", skipped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nPress Ctrl+C to stop\n")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.StartWithContext(ctx)
}

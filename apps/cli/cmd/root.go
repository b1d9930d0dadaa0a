package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gqltester",
	Short: "Fixture-driven integration tests for GraphQL servers.",
	Long: `gqltester runs GraphQL queries stored in plain text fixtures against a
server and compares each response with the expected JSON kept next to
the query. Fixtures live in suite directories below the tests directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Silent {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("GQLTESTER_CONFIG", ""), "Path to config file (env: GQLTESTER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", getEnvString("GQLTESTER_DIR", ""), "Tests directory (default ./gqltests) (env: GQLTESTER_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", getEnvString("GQLTESTER_LOG_LEVEL", ""), "Diagnostic log level: debug, info, warn, error (env: GQLTESTER_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("GQLTESTER_NO_COLOR", false), "Disable colored output (env: GQLTESTER_NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, err)
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(mockCmd)
}

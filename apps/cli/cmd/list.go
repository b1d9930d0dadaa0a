package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
)

var listCmd = &cobra.Command{
	Use:   "list [suite...]",
	Short: "List suites and their fixtures",
	Long: `List the suites in the tests directory and the fixtures each one runs.

Examples:
  gqltester list
  gqltester list users "orders/*_total.test"`,
	ValidArgsFunction: completeSuites(0),
	RunE:              listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	batches, err := suite.Discover(cfg.TestsDir, args)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	for _, b := range batches {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", b.Suite)
		for _, ref := range b.Fixtures {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", ref.Name(), ref.File)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d fixtures in %d suites\n", suite.Count(batches), len(batches))

	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gqltester/packages/core/config"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

var (
	forceInit bool
	initURL   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new gqltester project",
	Long: `Initialize a new gqltester project in the current directory.

This creates:
  - .gqltester.yml                  - Configuration file
  - gqltests/example/ping.test      - Example fixture

Examples:
  gqltester init
  gqltester init --url http://localhost:4000/graphql --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initURL, "url", "http://localhost:8080/graphql", "Server URL written to the config file")
}

const exampleFixture = `# Query sent to the server
{
  ping
}
` + fixture.Delimiter + `
{}
` + fixture.Delimiter + `
# Expected response. Lines starting with # are ignored and key order
# does not matter. Replace this section with URL to take the
# expectation from a regression server instead.
{
  "data": {
    "ping": "pong"
  }
}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	testsDir := runner.DefaultTestsDir
	if dirFlag != "" {
		testsDir = dirFlag
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, testsDir, "example", "ping"+fixture.Extension)

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.URL = initURL
	cfg.TestsDir = testsDir
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.MkdirAll(filepath.Dir(exampleFile), 0755); err != nil {
		return fmt.Errorf("failed to create tests directory: %w", err)
	}
	if err := os.WriteFile(exampleFile, []byte(exampleFixture), 0644); err != nil {
		return fmt.Errorf("failed to create example fixture: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nGet started:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  gqltester validate\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  gqltester run %s example\n", initURL)

	return nil
}

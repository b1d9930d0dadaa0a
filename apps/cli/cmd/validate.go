package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/abdul-hamid-achik/gqltester/packages/canonical"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
	"github.com/abdul-hamid-achik/gqltester/packages/expectation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [suite...]",
	Short: "Validate fixtures without running them",
	Long: `Validate fixtures without contacting a server. Each fixture must have two
or three sections, a query that parses as GraphQL, JSON variables and an
expectation that is JSON or a regression marker.

Examples:
  gqltester validate
  gqltester validate users orders`,
	ValidArgsFunction: completeSuites(0),
	RunE:              validateCommand,
}

// ErrInvalidVariables is reported for a variables section that is not JSON.
var ErrInvalidVariables = errors.New("variables are not valid JSON")

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	batches, err := suite.Discover(cfg.TestsDir, args)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	invalid := 0
	for _, b := range batches {
		for _, ref := range b.Fixtures {
			if err := validateFixture(cfg.TestsDir, ref); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", ref, err)
				invalid++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", ref)
		}
	}

	if invalid > 0 {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed: %d of %d fixtures invalid", invalid, suite.Count(batches)))
	}
	return nil
}

func validateFixture(root string, ref fixture.Ref) error {
	fx, err := fixture.Load(ref.Path(root))
	if err != nil {
		return err
	}

	if _, err := parser.ParseQuery(&ast.Source{Name: ref.String(), Input: fx.Query}); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if !canonical.Valid(fx.Variables) {
		return ErrInvalidVariables
	}

	src := expectation.Classify(fx.Expectation)
	if src.Kind == expectation.KindRegression {
		return nil
	}
	_, err = expectation.Literal(src.Text)
	return err
}

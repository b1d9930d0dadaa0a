package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/gqltester/packages/core/config"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
	"github.com/abdul-hamid-achik/gqltester/packages/http"
	"github.com/abdul-hamid-achik/gqltester/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <url> [suite...]",
	Short: "Run fixtures against a GraphQL server",
	Long: `Run the fixtures of the selected suites against the GraphQL server at url.
Without suites every suite in the tests directory runs.

A suite selector is a directory name, "suite/file.test" for one fixture,
or a glob such as "users/*_by_id.test".

Examples:
  gqltester run http://localhost:8080/graphql
  gqltester run http://localhost:8080/graphql users orders -v
  gqltester run http://localhost:8080/graphql users/profile.test -vv
  gqltester run http://localhost:8080/graphql --regression-server http://stable:8080/graphql
  gqltester run http://localhost:8080/graphql --replace --sequential`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
			return withExitCode(ExitUsageError, err)
		}
		return nil
	},
	ValidArgsFunction: completeSuites(1),
	RunE:              runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	verboseFlag      int // 0=summary, 1=-v diffs, 2=-vv responses of server errors
	sequentialFlag   bool
	replaceFlag      bool
	regressionFlag   string
	workersFlag      int
	timeoutFlag      string
	retriesFlag      int
	retryDelayFlag   string
	rateFlag         float64
	suiteTimeoutFlag string
	graceFlag        string
	outputFlag       string
	watchFlag        bool
)

func init() {
	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v diffs, -vv also server responses) (env: GQLTESTER_VERBOSE)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("GQLTESTER_OUTPUT", ""), "Output format: console, tap (env: GQLTESTER_OUTPUT)")

	// Execution flags
	runCmd.Flags().BoolVarP(&sequentialFlag, "sequential", "d", getEnvBool("GQLTESTER_SEQUENTIAL", false), "Run fixtures one at a time (env: GQLTESTER_SEQUENTIAL)")
	runCmd.Flags().BoolVarP(&replaceFlag, "replace", "r", getEnvBool("GQLTESTER_REPLACE", false), "Replace the expectation of failing fixtures with the actual response (env: GQLTESTER_REPLACE)")
	runCmd.Flags().StringVar(&regressionFlag, "regression-server", getEnvString("GQLTESTER_REGRESSION_SERVER", ""), "Take every expectation from this server (env: GQLTESTER_REGRESSION_SERVER)")
	runCmd.Flags().IntVar(&workersFlag, "workers", getEnvInt("GQLTESTER_WORKERS", 0), "Fixtures run at once (default 5) (env: GQLTESTER_WORKERS)")
	runCmd.Flags().StringVar(&suiteTimeoutFlag, "suite-timeout", getEnvString("GQLTESTER_SUITE_TIMEOUT", ""), "Time limit per suite (default 5m) (env: GQLTESTER_SUITE_TIMEOUT)")
	runCmd.Flags().StringVar(&graceFlag, "grace", getEnvString("GQLTESTER_GRACE", ""), "Time running fixtures get to finish after Ctrl+C (default 2s) (env: GQLTESTER_GRACE)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch fixtures for changes and re-run")

	// Network flags
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("GQLTESTER_TIMEOUT", ""), "Request timeout (default 2m) (env: GQLTESTER_TIMEOUT)")
	runCmd.Flags().IntVar(&retriesFlag, "retries", getEnvInt("GQLTESTER_RETRIES", 0), "Attempts per fixture until a 200 (default 4) (env: GQLTESTER_RETRIES)")
	runCmd.Flags().StringVar(&retryDelayFlag, "retry-delay", getEnvString("GQLTESTER_RETRY_DELAY", ""), "Pause between attempts (env: GQLTESTER_RETRY_DELAY)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("GQLTESTER_RATE", 0), "Maximum requests per second, 0 for no limit (env: GQLTESTER_RATE)")
}

// runOverrides collects the run flags that were given on the command line
// or through the environment.
func runOverrides(cmd *cobra.Command, url string) *config.Config {
	verbosity := verboseFlag
	if !cmd.Flags().Changed("verbose") {
		verbosity = getEnvInt("GQLTESTER_VERBOSE", 0)
	}

	overrides := &config.Config{
		URL:              url,
		RegressionServer: regressionFlag,
		Workers:          workersFlag,
		Timeout:          timeoutFlag,
		Retries:          retriesFlag,
		RetryDelay:       retryDelayFlag,
		Rate:             rateFlag,
		SuiteTimeout:     suiteTimeoutFlag,
		Grace:            graceFlag,
		Output:           outputFlag,
		Verbose:          verbosity,
	}
	if isSet(cmd, "sequential", "GQLTESTER_SEQUENTIAL") {
		overrides.Sequential = config.BoolPtr(sequentialFlag)
	}
	if isSet(cmd, "replace", "GQLTESTER_REPLACE") {
		overrides.Replace = config.BoolPtr(replaceFlag)
	}
	return overrides
}

func isSet(cmd *cobra.Command, flag, env string) bool {
	if cmd.Flags().Changed(flag) {
		return true
	}
	_, ok := os.LookupEnv(env)
	return ok
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runOverrides(cmd, args[0]))
	if err != nil {
		return err
	}

	rc, err := cfg.RunnerConfig()
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if cfg.GetNoColor() {
		color.NoColor = true
	}
	if err := http.ValidateURL(rc.URL); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if rc.RegressionURL != "" {
		if err := http.ValidateURL(rc.RegressionURL); err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("regression server: %w", err))
		}
	}

	logger, err := newLogger(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Formatters keep per-run state, so every run gets a fresh one.
	newFormatter := func() (output.Formatter, error) {
		return output.New(cfg.Output, cmd.OutOrStdout(), cfg.Verbose, cfg.GetNoColor())
	}
	formatter, err := newFormatter()
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	selectors := args[1:]
	r := runner.NewRunner(rc, runner.WithLogger(logger))
	orch := runner.NewOrchestrator(r, rc, logger.Named("orchestrator"))

	runTests := func(formatter output.Formatter) error {
		// Every suite is expanded before anything runs.
		batches, err := suite.Discover(rc.TestsDir, selectors)
		if err != nil {
			formatter.FormatError(err)
			return &ExitError{Code: ExitParseError, Err: err, Silent: true}
		}

		formatter.FormatHeader(version)
		logger.Debug("starting run",
			zap.String("url", rc.URL),
			zap.Int("suites", len(batches)),
			zap.Int("fixtures", suite.Count(batches)))

		report, err := orch.Run(ctx, batches, formatter)
		formatter.FormatSummary(report)

		switch {
		case errors.Is(err, runner.ErrInterrupted), errors.Is(err, runner.ErrSuiteTimeout):
			return &ExitError{Code: ExitTestFailure, Err: err, Silent: true}
		case err != nil:
			return err
		case !report.OK():
			return &ExitError{Code: ExitTestFailure, Err: fmt.Errorf("%d of %d tests failed", report.Failed(), report.Total()), Silent: true}
		}
		return nil
	}

	runErr := runTests(formatter)
	if !watchFlag {
		return runErr
	}
	if exitCode(runErr) == ExitParseError || ctx.Err() != nil {
		return runErr
	}

	return watch(ctx, cmd, rc.TestsDir, formatter, logger, func() error {
		f, _ := newFormatter()
		return runTests(f)
	})
}

// watch re-runs the tests whenever a fixture below root changes, until ctx
// is cancelled.
func watch(ctx context.Context, cmd *cobra.Command, root string, formatter output.Formatter, logger *zap.Logger, runTests func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := watcher.Add(path); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", path, err))
				return nil
			}
			watched++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	logger.Debug("watching fixtures", zap.String("root", root), zap.Int("directories", watched))

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var (
		debounce <-chan time.Time
		changed  string
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isFixtureEvent(event) {
				changed = event.Name
				debounce = time.After(WatchDebounceDelay)
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

		case <-debounce:
			debounce = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running tests...\n", changed)
			if err := runTests(); err != nil && exitCode(err) != ExitTestFailure {
				logger.Warn("re-run failed", zap.Error(err))
			}
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func isFixtureEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, fixture.Extension) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

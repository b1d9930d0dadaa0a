package cmd

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abdul-hamid-achik/gqltester/packages/core/config"
	"github.com/abdul-hamid-achik/gqltester/packages/output"
)

// Flags shared by every command
var (
	configFlag   string
	dirFlag      string
	logLevelFlag string
	noColorFlag  bool
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// loadConfig reads the config file and applies the shared flags and then
// overrides on top of it.
func loadConfig(overrides *config.Config) (*config.Config, error) {
	fileCfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	shared := &config.Config{
		TestsDir: dirFlag,
		LogLevel: logLevelFlag,
	}
	if noColorFlag {
		shared.NoColor = config.BoolPtr(true)
	}

	return fileCfg.Merge(shared).Merge(overrides), nil
}

// newLogger builds the diagnostics logger. It writes to stderr so that
// formatter output on stdout stays machine readable.
func newLogger(level string, verbosity int) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("invalid log level %q", level))
	}
	if verbosity >= output.VerbosityAll && lvl > zapcore.InfoLevel {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

package config

import (
	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
	"github.com/abdul-hamid-achik/gqltester/packages/http"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		TestsDir:     runner.DefaultTestsDir,
		Sequential:   BoolPtr(false),
		Replace:      BoolPtr(false),
		Workers:      runner.DefaultConcurrency,
		Timeout:      http.DefaultTimeout.String(),
		Retries:      http.DefaultMaxAttempts,
		RetryDelay:   "0s",
		SuiteTimeout: runner.DefaultSuiteTimeout.String(),
		Grace:        runner.DefaultGracePeriod.String(),
		Output:       "console",
		NoColor:      BoolPtr(false),
		LogLevel:     "error",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.URL == "" &&
		c.RegressionServer == "" &&
		c.TestsDir == d.TestsDir &&
		c.GetSequential() == d.GetSequential() &&
		c.GetReplace() == d.GetReplace() &&
		c.Workers == d.Workers &&
		c.Timeout == d.Timeout &&
		c.Retries == d.Retries &&
		c.RetryDelay == d.RetryDelay &&
		c.Rate == 0 &&
		c.SuiteTimeout == d.SuiteTimeout &&
		c.Grace == d.Grace &&
		c.UserAgent == "" &&
		len(c.Headers) == 0 &&
		c.Output == d.Output &&
		c.GetNoColor() == d.GetNoColor() &&
		c.Verbose == 0 &&
		c.LogLevel == d.LogLevel
}

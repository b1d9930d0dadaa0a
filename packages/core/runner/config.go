package runner

import (
	"time"

	"github.com/abdul-hamid-achik/gqltester/packages/http"
)

const (
	// DefaultConcurrency is the number of fixtures run at once in pooled mode
	DefaultConcurrency = 5
	// DefaultSuiteTimeout bounds the wait for one suite in pooled mode
	DefaultSuiteTimeout = 5 * time.Minute
	// DefaultGracePeriod is how long in-flight fixtures may finish after an interrupt
	DefaultGracePeriod = 2 * time.Second
	// DefaultTestsDir is the tests root relative to the working directory
	DefaultTestsDir = "gqltests"
)

// Config is built once per invocation and never modified afterwards. It is
// passed by value into everything that needs it.
type Config struct {
	// URL of the server under test
	URL string
	// RegressionURL, when set, replaces every fixture's expectation with the
	// response of this server
	RegressionURL string
	TestsDir      string

	// Replace rewrites the expectation of failing fixtures with the actual
	// response
	Replace bool
	// Sequential disables the worker pool
	Sequential   bool
	Workers      int
	SuiteTimeout time.Duration
	GracePeriod  time.Duration

	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	RateLimit   float64
	UserAgent   string
	Headers     map[string]string
}

// WithDefaults fills zero values with the package defaults.
func (c Config) WithDefaults() Config {
	if c.TestsDir == "" {
		c.TestsDir = DefaultTestsDir
	}
	if c.Workers <= 0 {
		c.Workers = DefaultConcurrency
	}
	if c.SuiteTimeout <= 0 {
		c.SuiteTimeout = DefaultSuiteTimeout
	}
	if c.GracePeriod < 0 {
		c.GracePeriod = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = http.DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = http.DefaultMaxAttempts
	}
	if c.UserAgent == "" {
		c.UserAgent = http.DefaultUserAgent
	}
	return c
}

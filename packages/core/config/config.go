package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/gqltester/packages/core/runner"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidConfig is wrapped by every load and validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the gqltester configuration file
type Config struct {
	URL              string            `yaml:"url,omitempty"`
	RegressionServer string            `yaml:"regressionServer,omitempty"`
	TestsDir         string            `yaml:"testsDir,omitempty"`
	Sequential       *bool             `yaml:"sequential,omitempty"`
	Replace          *bool             `yaml:"replace,omitempty"`
	Workers          int               `yaml:"workers,omitempty"`
	Timeout          string            `yaml:"timeout,omitempty"`
	Retries          int               `yaml:"retries,omitempty"` // attempts per fixture, the first one included
	RetryDelay       string            `yaml:"retryDelay,omitempty"`
	Rate             float64           `yaml:"rate,omitempty"` // requests per second, 0 for unlimited
	SuiteTimeout     string            `yaml:"suiteTimeout,omitempty"`
	Grace            string            `yaml:"grace,omitempty"`
	UserAgent        string            `yaml:"userAgent,omitempty"`
	Headers          map[string]string `yaml:"headers,omitempty"`
	Output           string            `yaml:"output,omitempty"`
	NoColor          *bool             `yaml:"noColor,omitempty"`
	Verbose          int               `yaml:"verbose,omitempty"`
	LogLevel         string            `yaml:"logLevel,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetSequential() bool {
	return getBool(c.Sequential, false)
}

func (c *Config) GetReplace() bool {
	return getBool(c.Replace, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".gqltester.yml",
	".gqltester.yaml",
	"gqltester.yml",
}

// LoadConfig loads configuration from the specified path or searches the
// current directory for a config file
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory.
// Defaults are returned when there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML data against the configuration schema and merges it
// over the defaults.
func Parse(data []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return DefaultConfig(), nil
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return DefaultConfig().Merge(&fileCfg), nil
}

func validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.URL != "" {
		result.URL = other.URL
	}
	if other.RegressionServer != "" {
		result.RegressionServer = other.RegressionServer
	}
	if other.TestsDir != "" {
		result.TestsDir = other.TestsDir
	}
	if other.Workers > 0 {
		result.Workers = other.Workers
	}
	if other.Timeout != "" {
		result.Timeout = other.Timeout
	}
	if other.Retries > 0 {
		result.Retries = other.Retries
	}
	if other.RetryDelay != "" {
		result.RetryDelay = other.RetryDelay
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.SuiteTimeout != "" {
		result.SuiteTimeout = other.SuiteTimeout
	}
	if other.Grace != "" {
		result.Grace = other.Grace
	}
	if other.UserAgent != "" {
		result.UserAgent = other.UserAgent
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.Verbose > 0 {
		result.Verbose = other.Verbose
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Sequential != nil {
		result.Sequential = other.Sequential
	}
	if other.Replace != nil {
		result.Replace = other.Replace
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// RunnerConfig converts the file settings into the immutable value the
// runner works with.
func (c *Config) RunnerConfig() (runner.Config, error) {
	timeout, err := parseDuration("timeout", c.Timeout)
	if err != nil {
		return runner.Config{}, err
	}
	retryDelay, err := parseDuration("retryDelay", c.RetryDelay)
	if err != nil {
		return runner.Config{}, err
	}
	suiteTimeout, err := parseDuration("suiteTimeout", c.SuiteTimeout)
	if err != nil {
		return runner.Config{}, err
	}
	grace, err := parseDuration("grace", c.Grace)
	if err != nil {
		return runner.Config{}, err
	}

	cfg := runner.Config{
		URL:           c.URL,
		RegressionURL: c.RegressionServer,
		TestsDir:      c.TestsDir,
		Replace:       c.GetReplace(),
		Sequential:    c.GetSequential(),
		Workers:       c.Workers,
		SuiteTimeout:  suiteTimeout,
		GracePeriod:   grace,
		Timeout:       timeout,
		MaxAttempts:   c.Retries,
		RetryDelay:    retryDelay,
		RateLimit:     c.Rate,
		UserAgent:     c.UserAgent,
		Headers:       c.Headers,
	}
	return cfg.WithDefaults(), nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, field)
	}
	return d, nil
}

// SaveConfig writes the configuration as YAML
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

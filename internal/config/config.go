// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Nexway  NexwayConfig  `yaml:"nexway"`
	Feed    FeedConfig    `yaml:"feed"`
	Mock    MockConfig    `yaml:"mock"`
	Tracing TracingConfig `yaml:"tracing"`
	Logging LoggingConfig `yaml:"logging"`
}

// NexwayConfig defines the partner credentials and API endpoint settings.
type NexwayConfig struct {
	ClientSecret       string        `yaml:"client_secret"`
	RealmName          string        `yaml:"realm_name"`
	Environment        string        `yaml:"environment"` // staging, production
	BaseURL            string        `yaml:"base_url"`    // overrides token and host URLs
	FeedURL            string        `yaml:"feed_url"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Secret             string        `yaml:"secret"` // default per-call API secret
}

// FeedConfig defines the product feed defaults.
type FeedConfig struct {
	Provider string `yaml:"provider"`
	Config   string `yaml:"config"`
}

// MockConfig defines the Echo HTTP settings of the local mock API.
type MockConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ClientSecret string        `yaml:"client_secret"`
	RealmName    string        `yaml:"realm_name"`
	Secret       string        `yaml:"secret"`
	RateLimit    float64       `yaml:"rate_limit"` // requests per second, 0 disables
	Burst        int           `yaml:"burst"`
}

// Addr returns the listen address.
func (m *MockConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// TracingConfig defines the OTLP trace exporter settings.
type TracingConfig struct {
	Endpoint   string  `yaml:"endpoint"` // host:port, empty disables tracing
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. A .env file next to the config file is loaded
// first; variables already set in the process environment win.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with every default applied and no credentials.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyNexwayDefaults(&cfg.Nexway)
	applyMockDefaults(&cfg.Mock)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyNexwayDefaults(n *NexwayConfig) {
	if n.Environment == "" {
		n.Environment = "staging"
	}
	if n.Timeout == 0 {
		n.Timeout = 30 * time.Second
	}
}

func applyMockDefaults(m *MockConfig) {
	if m.Host == "" {
		m.Host = "127.0.0.1"
	}
	if m.Port == 0 {
		m.Port = 8089
	}
	if m.ReadTimeout == 0 {
		m.ReadTimeout = 10 * time.Second
	}
	if m.WriteTimeout == 0 {
		m.WriteTimeout = 10 * time.Second
	}
	if m.ClientSecret == "" {
		m.ClientSecret = "mock-client-secret"
	}
	if m.RealmName == "" {
		m.RealmName = "mock-realm"
	}
	if m.Secret == "" {
		m.Secret = "mock-secret"
	}
	if m.Burst == 0 {
		m.Burst = 10
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.SampleRate == 0 {
		t.SampleRate = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// Validate reports every invalid or missing setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Nexway.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("nexway.client_secret is required"))
	}
	if c.Nexway.RealmName == "" {
		errs = append(errs, fmt.Errorf("nexway.realm_name is required"))
	}

	switch strings.ToLower(strings.TrimSpace(c.Nexway.Environment)) {
	case "staging", "production":
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"nexway.environment must be one of: staging, production (got %q)",
				c.Nexway.Environment,
			),
		)
	}

	if c.Nexway.Timeout < 0 {
		errs = append(errs, fmt.Errorf("nexway.timeout must not be negative"))
	}

	if c.Mock.Port < 1 || c.Mock.Port > 65535 {
		errs = append(errs, fmt.Errorf("mock.port must be between 1 and 65535 (got %d)", c.Mock.Port))
	}

	if c.Mock.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("mock.rate_limit must not be negative"))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(
			errs,
			fmt.Errorf("tracing.sample_rate must be between 0 and 1 (got %g)", c.Tracing.SampleRate),
		)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(
			errs,
			fmt.Errorf("logging.format must be one of: text, json (got %q)", c.Logging.Format),
		)
	}

	return errors.Join(errs...)
}

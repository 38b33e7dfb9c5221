package config

import "time"

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Retry   RetryConfig   `yaml:"retry"`
	Probe   ProbeConfig   `yaml:"probe"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings for /health and /metrics.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RetryConfig holds the retry policy applied to wrapped calls.
type RetryConfig struct {
	// InternalErrorRetryMaxCount bounds retries of transient stream
	// resets. A pointer distinguishes "absent" (defaults to 2) from an
	// explicit 0, which disables retries.
	InternalErrorRetryMaxCount *int `yaml:"internal_error_retry_max_count"`
}

// MaxCount returns the configured retry budget, defaulting when absent.
func (c RetryConfig) MaxCount() int {
	if c.InternalErrorRetryMaxCount == nil {
		return 2
	}
	return *c.InternalErrorRetryMaxCount
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ProbeConfig holds settings for the health-check prober.
type ProbeConfig struct {
	// Target is the gRPC endpoint to probe. An https:// scheme or :443
	// suffix selects TLS.
	Target string `yaml:"target"`

	// Service is the health-check service name; empty probes the server
	// as a whole.
	Service string `yaml:"service"`

	Interval    time.Duration `yaml:"interval"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

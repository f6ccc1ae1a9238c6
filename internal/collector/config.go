package collector

import "time"

// CollectorConfig contains configurable parameters for the host collector.
// Use DefaultCollectorConfig() to get sensible defaults, then override as needed.
type CollectorConfig struct {
	// MaxConcurrency bounds how many hosts are queried at once (default: 8).
	MaxConcurrency int
	// HostTimeout caps the interface and item lookups of a single host (default: 10s).
	HostTimeout time.Duration
}

// DefaultCollectorConfig returns a CollectorConfig with sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		MaxConcurrency: 8,
		HostTimeout:    10 * time.Second,
	}
}

// WithMaxConcurrency returns a copy of the config with a different fan-out bound.
func (c CollectorConfig) WithMaxConcurrency(n int) CollectorConfig {
	c.MaxConcurrency = n
	return c
}

// WithHostTimeout returns a copy of the config with a different per-host timeout.
func (c CollectorConfig) WithHostTimeout(d time.Duration) CollectorConfig {
	c.HostTimeout = d
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c CollectorConfig) Validate() error {
	if c.MaxConcurrency <= 0 {
		return &ConfigError{Field: "MaxConcurrency", Message: "must be positive"}
	}
	if c.HostTimeout <= 0 {
		return &ConfigError{Field: "HostTimeout", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}

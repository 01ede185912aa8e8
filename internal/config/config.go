// Package config loads server-mode configuration with precedence:
// runtime overrides > environment variables > defaults.
package config

import "time"

// Config is the resolved server-mode configuration.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `mapstructure:"server"`

	// Logging configures the structured logger.
	Logging LoggingConfig `mapstructure:"logging"`

	// Health configures health endpoint behavior.
	Health HealthConfig `mapstructure:"health"`

	// Debug configures debug facilities.
	Debug DebugConfig `mapstructure:"debug"`

	// Workers is the default per-level listing concurrency.
	Workers int `mapstructure:"workers"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// HealthConfig configures health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig configures debug facilities.
type DebugConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

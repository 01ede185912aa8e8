package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// envBindings maps config paths to their environment variables.
var envBindings = map[string]string{
	"server.host":             "LWD_HOST",
	"server.port":             "LWD_PORT",
	"server.read_timeout":     "LWD_READ_TIMEOUT",
	"server.write_timeout":    "LWD_WRITE_TIMEOUT",
	"server.idle_timeout":     "LWD_IDLE_TIMEOUT",
	"server.shutdown_timeout": "LWD_SHUTDOWN_TIMEOUT",
	"logging.level":           "LWD_LOG_LEVEL",
	"logging.profile":         "LWD_LOG_PROFILE",
	"health.enabled":          "LWD_HEALTH_ENABLED",
	"debug.enabled":           "LWD_DEBUG_ENABLED",
	"debug.pprof_enabled":     "LWD_PPROF_ENABLED",
	"workers":                 "LWD_WORKERS",
}

// Load resolves the configuration and caches it for GetConfig.
//
// Precedence, highest first: runtime overrides, environment variables,
// built-in defaults. Load may be called again to reload with different
// overrides.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	applyDefaults(v)

	for path, envVar := range envBindings {
		if err := v.BindEnv(path, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envVar, err)
		}
	}

	for _, override := range overrides {
		if err := v.MergeConfigMap(override); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// GetConfig returns the most recently loaded configuration, or nil if
// Load has not been called.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("health.enabled", true)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)

	v.SetDefault("workers", 4)
}

// Package config loads process-wide settings once at startup.
//
// Values come from environment variables (the names the deployment scripts
// already use), with typed defaults registered through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the gateway reads at startup.
type Config struct {
	Host string
	Port int

	// DBPath is the sqlite file backing the source registry.
	DBPath string

	// UpstreamTimeout bounds one outbound call when the selected source
	// carries no timeout of its own.
	UpstreamTimeout time.Duration

	DefaultPageSize int
	MaxPageSize     int

	RateLimitMax      int
	RateLimitDuration time.Duration

	// AdminKey is the bearer token required by registry writes.
	AdminKey string

	CORSOrigin string
}

// envBindings maps viper keys to their environment variable names.
// Durations are configured in milliseconds.
var envBindings = map[string]string{
	"host":                "HOST",
	"port":                "PORT",
	"db_path":             "DB_PATH",
	"api_timeout_ms":      "API_TIMEOUT",
	"rate_limit_max":      "RATE_LIMIT_MAX",
	"rate_limit_duration": "RATE_LIMIT_DURATION",
	"admin_key":           "API_ADMIN_KEY",
	"cors_origin":         "CORS_ORIGIN",
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("host", "")
	v.SetDefault("port", 3000)
	v.SetDefault("db_path", "./data/zy-api.db")
	v.SetDefault("api_timeout_ms", 10000)
	v.SetDefault("default_page_size", 20)
	v.SetDefault("max_page_size", 100)
	v.SetDefault("rate_limit_max", 100)
	v.SetDefault("rate_limit_duration", 60000)
	v.SetDefault("admin_key", "admin123")
	v.SetDefault("cors_origin", "*")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		Host:              v.GetString("host"),
		Port:              v.GetInt("port"),
		DBPath:            v.GetString("db_path"),
		UpstreamTimeout:   time.Duration(v.GetInt("api_timeout_ms")) * time.Millisecond,
		DefaultPageSize:   v.GetInt("default_page_size"),
		MaxPageSize:       v.GetInt("max_page_size"),
		RateLimitMax:      v.GetInt("rate_limit_max"),
		RateLimitDuration: time.Duration(v.GetInt("rate_limit_duration")) * time.Millisecond,
		AdminKey:          v.GetString("admin_key"),
		CORSOrigin:        v.GetString("cors_origin"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("config: API_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitDuration <= 0 {
		return nil, fmt.Errorf("config: rate limit must be positive")
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

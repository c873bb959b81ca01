package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory; env vars win over it.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// KARUTA_SERVER_PORT maps to server.port, and so on.
	v.SetEnvPrefix("KARUTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values so that only secrets and the database
// URL are mandatory in the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("scheduler.daily_new_limit", 3)
	v.SetDefault("scheduler.forecast_window_days", 14)
	v.SetDefault("scheduler.record_ttl_seconds", 300)
	v.SetDefault("scheduler.aggregate_ttl_seconds", 120)
	v.SetDefault("scheduler.profile_ttl_seconds", 1800)
	v.SetDefault("scheduler.min_ease_factor", 1.3)
	v.SetDefault("scheduler.max_ease_factor", 2.5)
}

// bindEnvKeys binds each known key explicitly. AutomaticEnv alone does not
// surface env-only keys through Unmarshal, so without this, values set purely
// via environment variables would be dropped.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.log_level",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"scheduler.daily_new_limit",
		"scheduler.forecast_window_days",
		"scheduler.record_ttl_seconds",
		"scheduler.aggregate_ttl_seconds",
		"scheduler.profile_ttl_seconds",
		"scheduler.min_ease_factor",
		"scheduler.max_ease_factor",
	}
	for _, key := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}

package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SchedulerConfig contains the tunable knobs of the card scheduler: how many
// new cards a deck may introduce per day, how far ahead the review forecast
// looks, and how long cached remote reads stay fresh.
type SchedulerConfig struct {
	DailyNewLimit       int     `mapstructure:"daily_new_limit" validate:"required,gt=0"`
	ForecastWindowDays  int     `mapstructure:"forecast_window_days" validate:"required,gt=0,lte=90"`
	RecordTTLSeconds    int     `mapstructure:"record_ttl_seconds" validate:"required,gt=0"`
	AggregateTTLSeconds int     `mapstructure:"aggregate_ttl_seconds" validate:"required,gt=0"`
	ProfileTTLSeconds   int     `mapstructure:"profile_ttl_seconds" validate:"required,gt=0"`
	MinEaseFactor       float64 `mapstructure:"min_ease_factor" validate:"required,gt=1"`
	MaxEaseFactor       float64 `mapstructure:"max_ease_factor" validate:"required,gtfield=MinEaseFactor"`
}

package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Stats    StatsConfig    `mapstructure:"stats"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL keeps word statistics in memory.
type DatabaseConfig struct {
	URL            string `mapstructure:"url"              validate:"omitempty,url"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// SessionConfig bounds live drill sessions and sets the failure policy used
// when building game modes.
type SessionConfig struct {
	MaxActive         int           `mapstructure:"max_active"         validate:"gte=1"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"       validate:"gt=0"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"     validate:"gt=0"`
	FailureStrategy   string        `mapstructure:"failure_strategy"   validate:"oneof=next_round static_offset"`
	RequeueOffset     int           `mapstructure:"requeue_offset"     validate:"gte=0"`
	RequiredSuccesses int           `mapstructure:"required_successes" validate:"gte=1"`
}

// StatsConfig sizes the background pipeline that persists outcomes.
type StatsConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,required"`
}

// Enabled reports whether a database URL is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

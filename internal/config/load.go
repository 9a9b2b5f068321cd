package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DRILL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("session.max_active", 1000)
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.failure_strategy", "next_round")
	v.SetDefault("session.requeue_offset", 0)
	v.SetDefault("session.required_successes", 1)

	v.SetDefault("stats.queue_size", 256)
	v.SetDefault("stats.worker_count", 2)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})
}

// Load reads configuration from the working directory. See LoadFrom.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads configuration with the following precedence, highest first:
// DRILL_-prefixed environment variables, a .env file in dir, config.yaml in
// dir, then built-in defaults. The result is validated before it is returned.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := applyDotEnv(v, filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDotEnv layers values from a .env file under the real environment. The
// process environment is left untouched.
func applyDotEnv(v *viper.Viper, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := EnvName(key)
		val, ok := values[name]
		if !ok || envSet(name) {
			continue
		}
		v.Set(key, val)
	}
	return nil
}

// EnvName returns the environment variable read for a config key,
// e.g. "server.port" -> "DRILL_SERVER_PORT".
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func envSet(name string) bool {
	val, ok := os.LookupEnv(name)
	return ok && val != ""
}

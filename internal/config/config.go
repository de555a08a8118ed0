package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the application configuration.
type Config struct {
	AppPort         string
	DBDriver        string
	DatabaseDSN     string
	RabbitMQURL     string
	RabbitMQQueue   string
	RabbitMQConsume bool
	LogLevel        slog.Level
	LogFormat       string
	DefaultUser     string
}

// EventsEnabled reports whether product events should be published.
func (c Config) EventsEnabled() bool { return c.RabbitMQURL != "" }

// Load reads an optional .env file, then the environment, on top of defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:catalog.db?_foreign_keys=1")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DEFAULT_USER", "system")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:   v.GetString("RABBITMQ_QUEUE"),
		RabbitMQConsume: v.GetBool("RABBITMQ_CONSUME"),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		DefaultUser:     v.GetString("DEFAULT_USER"),
	}

	if cfg.AppPort != "" && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver != DriverMemory && cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required for driver %s", cfg.DBDriver)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = "system"
	}
	return cfg, nil
}

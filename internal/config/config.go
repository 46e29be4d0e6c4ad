// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/unclebandit/baz-scheduler/internal/db"
)

type Config struct {
	Environment string
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	AMQPURL       string
	DeliveryQueue string

	Location     *time.Location
	ScheduleCron string
	HTTPAddr     string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "baz")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DELIVERY_QUEUE", "campaign_sends")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("HTTP_ADDR", ":8080")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:   v.GetString("APP_ENV"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		AMQPURL:       v.GetString("AMQP_URL"),
		DeliveryQueue: v.GetString("DELIVERY_QUEUE"),
		ScheduleCron:  strings.TrimSpace(v.GetString("SCHEDULE_CRON")),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
	}

	switch cfg.DBDriver {
	case db.DriverPostgres:
		if cfg.DatabaseURL == "" {
			if v.GetString("DB_PASSWORD") == "" {
				return nil, fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
			}
			cfg.DatabaseURL = fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s?sslmode=%s",
				v.GetString("DB_USER"),
				v.GetString("DB_PASSWORD"),
				v.GetString("DB_HOST"),
				v.GetString("DB_PORT"),
				v.GetString("DB_NAME"),
				v.GetString("DB_SSL_MODE"),
			)
		}
	case db.DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "baz.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.DeliveryQueue == "" {
		return nil, fmt.Errorf("DELIVERY_QUEUE must not be empty")
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// MaskedDatabaseURL hides the password for logging.
func (c *Config) MaskedDatabaseURL() string {
	return MaskPassword(c.DatabaseURL)
}

// MaskPassword replaces the password of a URL-style or key=value DSN with *****.
func MaskPassword(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		colon := strings.Index(rest, ":")
		if at < 0 || colon < 0 || colon > at {
			return dsn
		}
		return dsn[:i+3] + rest[:colon+1] + "*****" + rest[at:]
	}

	const marker = "password="
	start := strings.Index(dsn, marker)
	if start == -1 {
		return dsn
	}
	start += len(marker)
	end := strings.IndexByte(dsn[start:], ' ')
	if end == -1 {
		return dsn[:start] + "*****"
	}
	return dsn[:start] + "*****" + dsn[start+end:]
}

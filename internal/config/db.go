package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Host            string `envconfig:"DB_HOST" default:"postgres"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"booking"`
	Password        string `envconfig:"DB_PASSWORD" default:"booking"`
	Name            string `envconfig:"DB_NAME" default:"lesson_booking"`
	SSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"` // минут
}

func LoadDBConfig() (*DBConfig, error) {
	var cfg DBConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load db config: %w", err)
	}

	// минимальная валидация
	if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return &cfg, nil
}

// DSN собирает строку подключения для драйвера postgres.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}

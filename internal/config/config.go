package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string `env:"PORT" envDefault:"8080"`
	AuthToken         string `env:"AUTH_TOKEN,required,notEmpty"`
	DBURL             string `env:"DB_URL,required,notEmpty"`
	MigrationsPath    string `env:"DB_MIGRATIONS_PATH" envDefault:"./db/migrations"`
	ReadTimeoutSecs   int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`
	WriteTimeoutSecs  int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"`
	IdleTimeoutSecs   int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`
	DBMaxConns        int    `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int    `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxIdleSecs     int    `env:"DB_MAX_CONN_IDLE_SECS" envDefault:"300"`
	DBMaxLifeSecs     int    `env:"DB_MAX_CONN_LIFETIME_SECS" envDefault:"3600"`
	DBConnTimeoutSecs int    `env:"DB_CONN_TIMEOUT_SECS" envDefault:"10"`
	DBStatementCache  int    `env:"DB_STATEMENT_CACHE_CAPACITY" envDefault:"256"`
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ReadTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.WriteTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// DatabaseURL is optional: when empty the API still starts and every data endpoint answers 503.
	DatabaseURL string

	TableName   string
	TableSchema string

	DB struct {
		MaxConns       int
		IdleTimeout    time.Duration
		ConnectTimeout time.Duration
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:     firstEnv("APP_HOST", "HOSTNAME", "HOST", "0.0.0.0"),
		HTTPPort:    firstEnv("APP_PORT", "PORT", "3000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TableName:   getEnv("TABLE_NAME", ""),
		TableSchema: getEnv("TABLE_SCHEMA", ""),
	}

	var err error
	if cfg.DB.MaxConns, err = strconv.Atoi(getEnv("DB_MAX_CONNS", "10")); err != nil {
		return nil, fmt.Errorf("config: DB_MAX_CONNS: %w", err)
	}
	if cfg.DB.IdleTimeout, err = time.ParseDuration(getEnv("DB_IDLE_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("config: DB_IDLE_TIMEOUT: %w", err)
	}
	if cfg.DB.ConnectTimeout, err = time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("config: DB_CONNECT_TIMEOUT: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.HTTPPort, 10, 16); err != nil {
		return fmt.Errorf("config: invalid port %q", c.HTTPPort)
	}
	if c.DB.MaxConns <= 0 {
		return errors.New("config: DB_MAX_CONNS must be positive")
	}
	if c.DB.IdleTimeout < 0 || c.DB.ConnectTimeout < 0 {
		return errors.New("config: DB timeouts must not be negative")
	}
	return nil
}

// HasDatabase reports whether a data store is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// DSN returns DatabaseURL with connect_timeout filled in when the URL does not set one.
func (c *Config) DSN() string {
	dsn := c.DatabaseURL
	if dsn == "" || strings.Contains(dsn, "connect_timeout") || c.DB.ConnectTimeout <= 0 {
		return dsn
	}
	secs := strconv.Itoa(max(1, int(c.DB.ConnectTimeout/time.Second)))

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("connect_timeout", secs)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " connect_timeout=" + secs
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	OIDC   OIDCConfig
	Points PointsConfig
	Log    LogConfig
}

// AppConfig names the running environment.
type AppConfig struct {
	Env string `env:"APP_ENV" env-default:"dev"`
}

// HTTPConfig configures the listener and static files.
type HTTPConfig struct {
	Addr   string `env:"ADDR" env-default:":8080"`
	WebDir string `env:"WEB_DIR" env-default:"web"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// DBConfig selects and configures storage.
type DBConfig struct {
	Storage string `env:"STORAGE" env-default:"postgres"`
	URL     string `env:"DATABASE_URL"`
}

// RedisConfig configures the optional weekly stats cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"STATS_CACHE_TTL" env-default:"5m"`
}

// AuthConfig configures sessions and login.
type AuthConfig struct {
	SessionTTL       time.Duration `env:"SESSION_TTL" env-default:"24h"`
	LoginRatePerMin  int           `env:"LOGIN_RATE_PER_MIN" env-default:"10"`
	BcryptCost       int           `env:"BCRYPT_COST" env-default:"0"`
	TrustForwardAuth bool          `env:"TRUST_FORWARD_AUTH" env-default:"false"`
}

// OIDCConfig configures SSO. SSO is enabled when Issuer and ClientID are set.
type OIDCConfig struct {
	Issuer       string `env:"OIDC_ISSUER"`
	ClientID     string `env:"OIDC_CLIENT_ID"`
	ClientSecret string `env:"OIDC_CLIENT_SECRET"`
	RedirectURL  string `env:"OIDC_REDIRECT_URL"`
}

// Enabled reports whether SSO is configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

// PointsConfig configures the weekly award.
type PointsConfig struct {
	OncePerWeek bool `env:"POINTS_ONCE_PER_WEEK" env-default:"false"`
}

// LogConfig configures log output. An empty File logs to stdout.
type LogConfig struct {
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"28"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.DB.Storage {
	case StoragePostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required when STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.DB.Storage)
	}
	if c.Auth.LoginRatePerMin <= 0 {
		return errors.New("LOGIN_RATE_PER_MIN must be positive")
	}
	if c.OIDC.Enabled() && c.OIDC.RedirectURL == "" {
		return errors.New("OIDC_REDIRECT_URL is required when SSO is enabled")
	}
	return nil
}

// Package config loads server settings from GYMHUB_* environment variables,
// optionally seeded from .env files.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment key.
const Prefix = "GYMHUB_"

// Production is the ENV value that enables secure cookies and mandatory keys.
const Production = "production"

// State backends for per-browser client state.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// RedisOptions configures the redis client-state backend.
type RedisOptions struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// EmailOptions configures outbound email. An empty ResendKey disables delivery.
type EmailOptions struct {
	ResendKey string `env:"RESEND_KEY"`
	From      string `env:"EMAIL_FROM" envDefault:"GymHub <noreply@gymhub.co.nz>"`
}

// Config holds all server settings.
type Config struct {
	Env          string        `env:"ENV" envDefault:"development"`
	Addr         string        `env:"ADDR" envDefault:":8080"`
	BaseURL      string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DBPath       string        `env:"DB_PATH" envDefault:"gymhub.db"`
	StateBackend string        `env:"STATE_BACKEND" envDefault:"sqlite"`
	CSRFKey      string        `env:"CSRF_KEY"`
	CookieKey    string        `env:"COOKIE_KEY"`
	RateLimitRPS int           `env:"RATE_LIMIT_PER_SECOND" envDefault:"20"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SlowRequest  int           `env:"SLOW_REQUEST_MS" envDefault:"200"`
	SlowQuery    int           `env:"SLOW_QUERY_MS" envDefault:"50"`
	AdminEmail   string        `env:"ADMIN_EMAIL" envDefault:"admin@gymhub.local"`
	AdminPass    string        `env:"ADMIN_PASSWORD"`
	SeedFixtures bool          `env:"SEED_FIXTURES" envDefault:"true"`

	// TrustedOrigins are extra origins allowed to post forms, comma separated.
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:","`

	Redis RedisOptions
	Email EmailOptions
}

var (
	ErrUnknownBackend   = errors.New("STATE_BACKEND must be sqlite, redis, or memory")
	ErrMissingKeys      = errors.New("CSRF_KEY and COOKIE_KEY are required in production")
	ErrInvalidRateLimit = errors.New("RATE_LIMIT_PER_SECOND must be positive")
	ErrInvalidTTL       = errors.New("SESSION_TTL must be positive")
)

// LoadEnvFiles loads the files that exist, leaving variables already set untouched.
// POST: Returns the number of files loaded
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env, .env.local and the process environment.
func Load() (Config, error) {
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when environ is nil.
// POST: The returned Config passed Validate
func Parse(environ map[string]string) (Config, error) {
	var c Config
	opts := env.Options{Prefix: Prefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Env == Production
}

// Validate rejects impossible combinations.
func (c Config) Validate() error {
	switch c.StateBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StateBackend)
	}
	if c.RateLimitRPS <= 0 {
		return ErrInvalidRateLimit
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidTTL
	}
	if c.IsProduction() && (c.CSRFKey == "" || c.CookieKey == "") {
		return ErrMissingKeys
	}
	if c.CSRFKey != "" {
		if _, err := decodeKey("CSRF_KEY", c.CSRFKey, 32); err != nil {
			return err
		}
	}
	if c.CookieKey != "" {
		if _, err := decodeKey("COOKIE_KEY", c.CookieKey, 32, 64); err != nil {
			return err
		}
	}
	return nil
}

// CSRFAuthKey returns the decoded CSRF key, or nil when unset.
func (c Config) CSRFAuthKey() []byte {
	k, _ := decodeKey("CSRF_KEY", c.CSRFKey, 32)
	return k
}

// CookieHashKey returns the decoded device-cookie signing key, or nil when unset.
func (c Config) CookieHashKey() []byte {
	k, _ := decodeKey("COOKIE_KEY", c.CookieKey, 32, 64)
	return k
}

func decodeKey(name, value string, sizes ...int) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex: %w", name, err)
	}
	for _, n := range sizes {
		if len(b) == n {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%s must decode to %v bytes, got %d", name, sizes, len(b))
}

package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the PostgreSQL connection string and pool settings.
type Config struct {
	DSN             string `toml:"dsn" validate:"required,url"`
	MaxOpenConns    int    `toml:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int    `toml:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	DSN             string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Redacted returns the DSN with any password masked, for logging.
func (c *Config) Redacted() string {
	u, err := url.Parse(c.DSN)
	if err != nil {
		return "invalid dsn"
	}
	return u.Redacted()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DSN != "" {
		c.DSN = overlay.DSN
	}
	if overlay.MaxOpenConns != 0 {
		c.MaxOpenConns = overlay.MaxOpenConns
	}
	if overlay.MaxIdleConns != 0 {
		c.MaxIdleConns = overlay.MaxIdleConns
	}
	if overlay.ConnMaxLifetime != "" {
		c.ConnMaxLifetime = overlay.ConnMaxLifetime
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 2
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "15m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	lookup := func(name string, apply func(string)) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			apply(v)
		}
	}
	atoi := func(dst *int) func(string) {
		return func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	lookup(env.DSN, func(v string) { c.DSN = v })
	lookup(env.MaxOpenConns, atoi(&c.MaxOpenConns))
	lookup(env.MaxIdleConns, atoi(&c.MaxIdleConns))
	lookup(env.ConnMaxLifetime, func(v string) { c.ConnMaxLifetime = v })
	lookup(env.ConnTimeout, func(v string) { c.ConnTimeout = v })
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	u, _ := url.Parse(c.DSN)
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("dsn scheme must be postgres, got %q", u.Scheme)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}

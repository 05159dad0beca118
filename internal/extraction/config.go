package extraction

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/scribe/pkg/formatting"
)

var validate = validator.New()

// Config bounds what the extractors will read.
type Config struct {
	MaxSize  string `toml:"max_size" validate:"required"`
	MaxPages int    `toml:"max_pages" validate:"gte=0"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxSize  string
	MaxPages string
}

// MaxSizeBytes returns MaxSize in bytes.
func (c *Config) MaxSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return 50 * 1024 * 1024
	}
	return size
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
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
}

func (c *Config) loadDefaults() {
	if c.MaxSize == "" {
		c.MaxSize = "50MB"
	}
	if c.MaxPages == 0 {
		c.MaxPages = 500
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxSize != "" {
		if v := os.Getenv(env.MaxSize); v != "" {
			c.MaxSize = v
		}
	}
	if env.MaxPages != "" {
		if v := os.Getenv(env.MaxPages); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxPages = n
			}
		}
	}
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := formatting.ParseBytes(c.MaxSize); err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	return nil
}

package storage

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds Azure Blob Storage account parameters.
type Config struct {
	ServiceURL    string `toml:"service_url"`
	ContainerName string `toml:"container_name"`
	Prefix        string `toml:"prefix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ServiceURL    string
	ContainerName string
	Prefix        string
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
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "reports"
	}
	if c.Prefix == "" {
		c.Prefix = "reports"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ServiceURL != "" {
		if v := os.Getenv(env.ServiceURL); v != "" {
			c.ServiceURL = v
		}
	}
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
}

func (c *Config) validate() error {
	if c.ServiceURL == "" {
		return fmt.Errorf("service_url required")
	}
	u, err := url.Parse(c.ServiceURL)
	if err != nil {
		return fmt.Errorf("invalid service_url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("service_url must use https: %s", c.ServiceURL)
	}
	return nil
}

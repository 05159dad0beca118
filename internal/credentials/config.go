package credentials

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderGoogle = "google"
	ProviderEntra  = "entra"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config selects and parameterizes the identity provider.
type Config struct {
	Provider     string   `toml:"provider" validate:"oneof=google entra"`
	Issuer       string   `toml:"issuer" validate:"required,url"`
	ClientID     string   `toml:"client_id" validate:"required"`
	ClientSecret string   `toml:"client_secret"`
	TenantID     string   `toml:"tenant_id" validate:"required_if=Provider entra"`
	Scopes       []string `toml:"scopes" validate:"min=1,dive,required"`
	GrantTimeout string   `toml:"grant_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider     string
	Issuer       string
	ClientID     string
	ClientSecret string
	TenantID     string
	Scopes       string
	GrantTimeout string
}

// GrantTimeoutDuration returns GrantTimeout as a time.Duration.
func (c *Config) GrantTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.GrantTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if overlay.TenantID != "" {
		c.TenantID = overlay.TenantID
	}
	if overlay.Scopes != nil {
		c.Scopes = overlay.Scopes
	}
	if overlay.GrantTimeout != "" {
		c.GrantTimeout = overlay.GrantTimeout
	}
}

// Defaults depend on the provider, so env overrides are applied first.
func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGoogle
	}
	if c.GrantTimeout == "" {
		c.GrantTimeout = "10m"
	}

	switch c.Provider {
	case ProviderGoogle:
		if c.Issuer == "" {
			c.Issuer = "https://accounts.google.com"
		}
		if len(c.Scopes) == 0 {
			c.Scopes = []string{"openid", "email", "https://www.googleapis.com/auth/drive.file"}
		}
	case ProviderEntra:
		if c.Issuer == "" && c.TenantID != "" {
			c.Issuer = fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", c.TenantID)
		}
		if len(c.Scopes) == 0 {
			c.Scopes = []string{"https://storage.azure.com/.default"}
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.ClientSecret != "" {
		if v := os.Getenv(env.ClientSecret); v != "" {
			c.ClientSecret = v
		}
	}
	if env.TenantID != "" {
		if v := os.Getenv(env.TenantID); v != "" {
			c.TenantID = v
		}
	}
	if env.Scopes != "" {
		if v := os.Getenv(env.Scopes); v != "" {
			scopes := strings.Split(v, ",")
			c.Scopes = make([]string, 0, len(scopes))
			for _, scope := range scopes {
				if trimmed := strings.TrimSpace(scope); trimmed != "" {
					c.Scopes = append(c.Scopes, trimmed)
				}
			}
		}
	}
	if env.GrantTimeout != "" {
		if v := os.Getenv(env.GrantTimeout); v != "" {
			c.GrantTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.GrantTimeout); err != nil {
		return fmt.Errorf("invalid grant_timeout: %w", err)
	}
	return nil
}

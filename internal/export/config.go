package export

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/scribe/pkg/storage"
)

const (
	TargetDocs = "gdocs"
	TargetBlob = "blob"
)

var validate = validator.New()

// Config selects the export target.
type Config struct {
	Target string         `toml:"target" validate:"oneof=gdocs blob"`
	Docs   DocsConfig     `toml:"docs"`
	Blob   storage.Config `toml:"blob"`
}

// DocsConfig overrides Google API endpoints, mainly for testing.
type DocsConfig struct {
	Endpoint          string `toml:"endpoint" validate:"omitempty,url"`
	DiscoveryEndpoint string `toml:"discovery_endpoint" validate:"omitempty,url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Target string
	Blob   *storage.Env
}

// Finalize applies defaults, environment variable overrides, and validation.
// The blob settings are only finalized when blob is the selected target.
func (c *Config) Finalize(env *Env) error {
	if c.Target == "" {
		c.Target = TargetDocs
	}

	var blobEnv *storage.Env
	if env != nil {
		if env.Target != "" {
			if v := os.Getenv(env.Target); v != "" {
				c.Target = v
			}
		}
		blobEnv = env.Blob
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Target == TargetBlob {
		if err := c.Blob.Finalize(blobEnv); err != nil {
			return fmt.Errorf("blob: %w", err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Target != "" {
		c.Target = overlay.Target
	}
	if overlay.Docs.Endpoint != "" {
		c.Docs.Endpoint = overlay.Docs.Endpoint
	}
	if overlay.Docs.DiscoveryEndpoint != "" {
		c.Docs.DiscoveryEndpoint = overlay.Docs.DiscoveryEndpoint
	}
	c.Blob.Merge(&overlay.Blob)
}

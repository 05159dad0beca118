// Package config loads scribe's configuration from TOML files and SCRIBE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/export"
	"github.com/JaimeStill/scribe/internal/extraction"
	"github.com/JaimeStill/scribe/internal/reports"
	"github.com/JaimeStill/scribe/pkg/database"
	"github.com/JaimeStill/scribe/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvScribeEnv             = "SCRIBE_ENV"
	EnvScribeShutdownTimeout = "SCRIBE_SHUTDOWN_TIMEOUT"
	EnvScribeVersion         = "SCRIBE_VERSION"
)

// ErrTargetMismatch is returned when the export target cannot use tokens
// issued by the configured identity provider.
var ErrTargetMismatch = errors.New("export target does not match credential provider")

var databaseEnv = &database.Env{
	DSN:             "SCRIBE_DB_DSN",
	MaxOpenConns:    "SCRIBE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SCRIBE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SCRIBE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SCRIBE_DB_CONN_TIMEOUT",
}

var extractionEnv = &extraction.Env{
	MaxSize:  "SCRIBE_EXTRACTION_MAX_SIZE",
	MaxPages: "SCRIBE_EXTRACTION_MAX_PAGES",
}

var reportsEnv = &reports.Env{
	APIKey:        "SCRIBE_REPORTS_API_KEY",
	Model:         "SCRIBE_REPORTS_MODEL",
	MaxInputChars: "SCRIBE_REPORTS_MAX_INPUT_CHARS",
	PromptFile:    "SCRIBE_REPORTS_PROMPT_FILE",
	Language:      "SCRIBE_REPORTS_LANGUAGE",
}

var credentialsEnv = &credentials.Env{
	Provider:     "SCRIBE_CREDENTIALS_PROVIDER",
	Issuer:       "SCRIBE_CREDENTIALS_ISSUER",
	ClientID:     "SCRIBE_CREDENTIALS_CLIENT_ID",
	ClientSecret: "SCRIBE_CREDENTIALS_CLIENT_SECRET",
	TenantID:     "SCRIBE_CREDENTIALS_TENANT_ID",
	Scopes:       "SCRIBE_CREDENTIALS_SCOPES",
	GrantTimeout: "SCRIBE_CREDENTIALS_GRANT_TIMEOUT",
}

var exportEnv = &export.Env{
	Target: "SCRIBE_EXPORT_TARGET",
	Blob: &storage.Env{
		ServiceURL:    "SCRIBE_EXPORT_BLOB_SERVICE_URL",
		ContainerName: "SCRIBE_EXPORT_BLOB_CONTAINER_NAME",
		Prefix:        "SCRIBE_EXPORT_BLOB_PREFIX",
	},
}

// Config is the root configuration for scribe.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	API             APIConfig          `toml:"api"`
	Logging         LoggingConfig      `toml:"logging"`
	Extraction      extraction.Config  `toml:"extraction"`
	Reports         reports.Config     `toml:"reports"`
	Credentials     credentials.Config `toml:"credentials"`
	Export          export.Config      `toml:"export"`
	Archive         ArchiveConfig      `toml:"archive"`
	Database        database.Config    `toml:"database"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
}

// Env returns the SCRIBE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvScribeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Extraction.Merge(&overlay.Extraction)
	c.Reports.Merge(&overlay.Reports)
	c.Credentials.Merge(&overlay.Credentials)
	c.Export.Merge(&overlay.Export)
	c.Archive.Merge(&overlay.Archive)
	c.Database.Merge(&overlay.Database)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Extraction.Finalize(extractionEnv); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Reports.Finalize(reportsEnv); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := c.Credentials.Finalize(credentialsEnv); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if err := c.Export.Finalize(exportEnv); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Archive.Finalize(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if c.Archive.Enabled {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return c.validatePairing()
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvScribeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvScribeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// Google Docs accepts Google tokens and Azure Blob accepts Entra tokens.
func (c *Config) validatePairing() error {
	want := map[string]string{
		export.TargetDocs: credentials.ProviderGoogle,
		export.TargetBlob: credentials.ProviderEntra,
	}[c.Export.Target]

	if want != c.Credentials.Provider {
		return fmt.Errorf("%w: %s requires %s, got %s",
			ErrTargetMismatch, c.Export.Target, want, c.Credentials.Provider)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvScribeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

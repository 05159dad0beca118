// Package infrastructure provides core service initialization for application startup.
// It assembles the logger, lifecycle and collaborators that the pipeline requires.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/export"
	"github.com/JaimeStill/scribe/internal/extraction"
	"github.com/JaimeStill/scribe/internal/reports"
	"github.com/JaimeStill/scribe/pkg/database"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

// Infrastructure holds the core systems required by the pipeline.
// Database is nil unless the archive is enabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Extractor *extraction.Dispatcher
	Generator reports.Generator
	Target    export.Target
	Provider  credentials.Provider
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging)

	generator, err := reports.NewGemini(lc.Context(), &cfg.Reports, logger)
	if err != nil {
		return nil, fmt.Errorf("reports init failed: %w", err)
	}

	target, err := export.New(&cfg.Export, logger)
	if err != nil {
		return nil, fmt.Errorf("export init failed: %w", err)
	}

	provider, err := credentials.NewProvider(&cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("credentials init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Extractor: extraction.New(&cfg.Extraction, logger),
		Generator: generator,
		Target:    target,
		Provider:  provider,
	}

	if cfg.Archive.Enabled {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	return infra, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	return nil
}

// NewLogger builds the process logger on stderr.
func NewLogger(cfg *config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

package api

import (
	"fmt"

	"github.com/JaimeStill/scribe/internal/archive"
	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/internal/pipeline"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

// Domain holds the systems that comprise the API. Archive is nil when no
// database is configured.
type Domain struct {
	Registry    *items.Registry
	Credentials *credentials.Manager
	Session     *pipeline.Session
	Archive     *archive.Recorder
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	registry := items.NewRegistry()
	manager := credentials.New(runtime.Provider, runtime.Target, runtime.Logger)

	session := pipeline.New(
		registry,
		manager,
		runtime.Extractor,
		runtime.Generator,
		runtime.Target,
		runtime.Logger,
	)

	domain := &Domain{
		Registry:    registry,
		Credentials: manager,
		Session:     session,
	}

	if runtime.Database != nil {
		domain.Archive = archive.New(runtime.Database, runtime.Logger, runtime.ArchiveQueue)
		registry.Subscribe(domain.Archive.Observe)
	}

	return domain
}

// Start registers the credential initialization and archive worker with lc.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	if err := d.Credentials.Start(lc); err != nil {
		return fmt.Errorf("credentials start failed: %w", err)
	}
	if d.Archive != nil {
		if err := d.Archive.Start(lc); err != nil {
			return fmt.Errorf("archive start failed: %w", err)
		}
	}
	return nil
}

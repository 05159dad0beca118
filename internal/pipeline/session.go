// Package pipeline drives items through report generation and export. A
// Session is the single writer of the item registry and the only caller of
// the credential manager's invalidation path.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/export"
	"github.com/JaimeStill/scribe/internal/extraction"
	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/internal/reports"
)

// Credentials is the part of the credential manager the pipeline uses.
type Credentials interface {
	SignIn(ctx context.Context, prompt credentials.Prompt) error
	SignOut(ctx context.Context) error
	Invalidate(token credentials.Token, reason string)
	Valid() bool
	Token() (credentials.Token, bool)
	Status() credentials.Status
}

// Session owns the registry, the credential and the collaborators for one
// pipeline instance.
type Session struct {
	registry  *items.Registry
	creds     Credentials
	extractor extraction.Extractor
	generator reports.Generator
	target    export.Target
	logger    *slog.Logger

	running  atomic.Bool
	lastMu   sync.RWMutex
	last     *Summary
	exportMu sync.Mutex
}

// New creates a session over an existing registry.
func New(
	registry *items.Registry,
	creds Credentials,
	extractor extraction.Extractor,
	generator reports.Generator,
	target export.Target,
	logger *slog.Logger,
) *Session {
	return &Session{
		registry:  registry,
		creds:     creds,
		extractor: extractor,
		generator: generator,
		target:    target,
		logger:    logger.With("system", "pipeline"),
	}
}

// AddItems appends sources to the registry as pending items.
func (s *Session) AddItems(sources ...items.Source) []items.Item {
	added := s.registry.Append(sources...)
	for _, it := range added {
		s.logger.Info("item added", "item_id", it.ID, "name", it.Name, "size", it.Size)
	}
	return added
}

// SignIn establishes the export credential.
func (s *Session) SignIn(ctx context.Context, prompt credentials.Prompt) error {
	return s.creds.SignIn(ctx, prompt)
}

// SignOut revokes the export credential.
func (s *Session) SignOut(ctx context.Context) error {
	return s.creds.SignOut(ctx)
}

// Credential returns the credential status.
func (s *Session) Credential() credentials.Status {
	return s.creds.Status()
}

// Registry exposes the registry for read-only views.
func (s *Session) Registry() *items.Registry {
	return s.registry
}

// Item returns a single item.
func (s *Session) Item(id uuid.UUID) (items.Item, error) {
	it, ok := s.registry.Find(id)
	if !ok {
		return items.Item{}, items.ErrNotFound
	}
	return it, nil
}

// Running reports whether a batch run is active.
func (s *Session) Running() bool {
	return s.running.Load()
}

// update writes through the registry. Failures here mean the invariants
// were already broken, so they are logged rather than returned.
func (s *Session) update(ctx context.Context, id uuid.UUID, changes ...items.Change) {
	if _, err := s.registry.Update(id, changes...); err != nil {
		s.logger.ErrorContext(ctx, "registry update rejected", "item_id", id, "error", err)
	}
}

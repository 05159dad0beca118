// Package archive keeps a Postgres history of generated and exported reports.
// It observes the item registry and never writes back to it.
package archive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/pkg/database"
	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

const drainTimeout = 5 * time.Second

// Recorder queues registry changes and writes them from a single worker.
type Recorder struct {
	store  store
	queue  chan entry
	logger *slog.Logger
	now    func() time.Time
	ready  func(context.Context) error
}

// New creates a recorder over db with a queue of the given capacity. The
// worker holds off writing until db has answered its startup ping.
func New(db database.System, logger *slog.Logger, capacity int) *Recorder {
	r := newRecorder(&repo{db: db.Connection()}, logger, capacity)
	r.ready = db.Wait
	return r
}

func newRecorder(s store, logger *slog.Logger, capacity int) *Recorder {
	return &Recorder{
		store:  s,
		queue:  make(chan entry, capacity),
		logger: logger.With("system", "archive"),
		now:    time.Now,
		ready:  func(context.Context) error { return nil },
	}
}

// Observe is an items.Observer. It enqueues a report when generation
// completes and an export when the export succeeds. A full queue drops the
// entry.
func (r *Recorder) Observe(it items.Item) {
	e, ok := r.entryFor(it)
	if !ok {
		return
	}

	select {
	case r.queue <- e:
	default:
		r.logger.Warn("archive queue full, entry dropped", "item_id", it.ID, "kind", e.kind)
	}
}

func (r *Recorder) entryFor(it items.Item) (entry, bool) {
	e := entry{itemID: it.ID, name: it.Name, at: r.now()}

	switch it.Export.Phase() {
	case items.ExportNotStarted:
		report, ok := it.Generation.Report()
		if !ok {
			return entry{}, false
		}
		e.kind, e.body = kindReport, report
	case items.ExportDone:
		addr, _ := it.Export.Address()
		e.kind, e.body = kindExport, addr
	default:
		return entry{}, false
	}
	return e, true
}

// Start runs the worker until shutdown, then drains what is left in the
// queue. When the database never becomes reachable the worker discards
// entries instead of writing them.
func (r *Recorder) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting archive worker")

	lc.OnShutdown(func() {
		if err := r.ready(lc.Context()); err != nil {
			if lc.Context().Err() == nil {
				r.logger.Error("archive unavailable, entries will be discarded", "error", err)
				r.discard(lc.Context())
			}
			return
		}

		r.run(lc.Context())

		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		r.drain(ctx)

		r.logger.Info("archive worker stopped")
	})

	return nil
}

func (r *Recorder) run(ctx context.Context) {
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Recorder) discard(ctx context.Context) {
	for {
		select {
		case <-r.queue:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Recorder) drain(ctx context.Context) {
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, e entry) {
	var err error
	switch e.kind {
	case kindReport:
		err = r.store.SaveReport(ctx, e)
	case kindExport:
		err = r.store.SaveExport(ctx, e)
	}

	switch {
	case err == nil:
		r.logger.Debug("archived", "item_id", e.itemID, "kind", e.kind)
	case errors.Is(err, ErrDuplicate):
		r.logger.Debug("already archived", "item_id", e.itemID, "kind", e.kind)
	default:
		r.logger.Error("archive write failed", "item_id", e.itemID, "kind", e.kind, "error", err)
	}
}

// Recent returns the latest archived reports, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 || limit > 500 {
		return nil, ErrInvalidLimit
	}
	return r.store.Recent(ctx, limit)
}

// Handler returns the HTTP handler for the archive.
func (r *Recorder) Handler() *Handler {
	return NewHandler(r, r.logger)
}

package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scribe/internal/items"
)

// Summary describes a finished batch run.
type Summary struct {
	Started   time.Time     `json:"started"`
	Finished  time.Time     `json:"finished"`
	Duration  time.Duration `json:"duration"`
	Snapshot  int           `json:"snapshot"`
	Done      int           `json:"done"`
	Failed    int           `json:"failed"`
	Remaining int           `json:"remaining"`
}

// BatchStatus reports whether a run is active and the outcome of the last one.
type BatchStatus struct {
	Running bool     `json:"running"`
	Last    *Summary `json:"last,omitempty"`
}

// RunBatch processes every item pending at invocation time, one at a time
// in submission order, and blocks until the snapshot is drained. Item
// failures are recorded on the item and never abort the run.
func (s *Session) RunBatch(ctx context.Context) (Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Summary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.run(ctx), nil
}

// StartBatch claims the run flag and processes the batch in the background.
// ctx bounds the run and should outlive the caller's request.
func (s *Session) StartBatch(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	go func() {
		defer s.running.Store(false)
		s.run(ctx)
	}()
	return nil
}

// BatchStatus returns the run flag and the last summary.
func (s *Session) BatchStatus() BatchStatus {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return BatchStatus{Running: s.running.Load(), Last: s.last}
}

func (s *Session) run(ctx context.Context) Summary {
	snapshot := s.snapshot()
	if len(snapshot) == 0 {
		return Summary{}
	}

	summary := Summary{Started: time.Now(), Snapshot: len(snapshot)}
	s.logger.InfoContext(ctx, "batch started", "items", len(snapshot))

	for i, id := range snapshot {
		phase := items.GenerationPending
		if ctx.Err() == nil {
			phase = s.process(ctx, id)
		}

		if phase == items.GenerationPending {
			summary.Remaining = len(snapshot) - i
			s.logger.WarnContext(ctx, "batch interrupted", "remaining", summary.Remaining)
			break
		}
		if phase == items.GenerationDone {
			summary.Done++
		} else {
			summary.Failed++
		}
	}

	summary.Finished = time.Now()
	summary.Duration = summary.Finished.Sub(summary.Started)

	s.lastMu.Lock()
	s.last = &summary
	s.lastMu.Unlock()

	s.logger.InfoContext(ctx, "batch finished",
		"done", summary.Done,
		"failed", summary.Failed,
		"remaining", summary.Remaining,
		"duration", summary.Duration,
	)
	return summary
}

func (s *Session) snapshot() []uuid.UUID {
	var ids []uuid.UUID
	for it := range s.registry.Pending() {
		ids = append(ids, it.ID)
	}
	return ids
}

// process drives one item through extraction and generation and returns the
// phase it was left in. Cancellation returns the item to pending.
func (s *Session) process(ctx context.Context, id uuid.UUID) items.GenerationPhase {
	it, ok := s.registry.Find(id)
	if !ok {
		return items.GenerationFailed
	}

	log := s.logger.With("item_id", id, "name", it.Name)
	s.update(ctx, id, items.SetGeneration(items.Processing()))

	text, err := s.extractor.Extract(ctx, it.Source)
	if ctx.Err() != nil {
		s.update(ctx, id, items.SetGeneration(items.Pending()))
		return items.GenerationPending
	}
	if err != nil || strings.TrimSpace(text) == "" {
		log.WarnContext(ctx, "extraction failed", "error", err)
		s.update(ctx, id, items.SetGeneration(items.GenerationFailure(extractionFailure)))
		return items.GenerationFailed
	}

	report, err := s.generator.Generate(ctx, text, it.Name)
	if ctx.Err() != nil {
		s.update(ctx, id, items.SetGeneration(items.Pending()))
		return items.GenerationPending
	}
	if err != nil {
		log.WarnContext(ctx, "report generation failed", "error", err)
		s.update(ctx, id, items.SetGeneration(items.GenerationFailure(err.Error())))
		return items.GenerationFailed
	}

	s.update(ctx, id, items.SetGeneration(items.Generated(report)))
	log.InfoContext(ctx, "report generated", "chars", len(report))
	return items.GenerationDone
}

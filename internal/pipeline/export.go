package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/export"
	"github.com/JaimeStill/scribe/internal/items"
)

// ExportItem publishes a generated report. Refusals return an error and
// leave the item untouched; an attempted export always resolves into the
// item's export state, and the returned error is nil.
func (s *Session) ExportItem(ctx context.Context, id uuid.UUID) (items.Item, error) {
	it, token, err := s.claimExport(ctx, id)
	if err != nil {
		return it, err
	}

	log := s.logger.With("item_id", id, "name", it.Name)
	report, _ := it.Generation.Report()

	result, err := s.target.Export(ctx, token, export.Document{
		Title: it.Name,
		Body:  report,
	})

	if err != nil {
		log.WarnContext(ctx, "export failed", "error", err)
		if export.IsAuthFailure(err) {
			s.creds.Invalidate(token, err.Error())
		}
		return s.finishExport(ctx, id, items.ExportFailure(err.Error()))
	}

	log.InfoContext(ctx, "report exported", "address", result.Address)
	return s.finishExport(ctx, id, items.Exported(result.Address))
}

// claimExport checks every precondition and moves the item to in progress
// as one step, so two concurrent calls cannot both export the same item.
func (s *Session) claimExport(ctx context.Context, id uuid.UUID) (items.Item, credentials.Token, error) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	it, ok := s.registry.Find(id)
	if !ok {
		return items.Item{}, credentials.Token{}, items.ErrNotFound
	}
	if it.Generation.Phase() != items.GenerationDone {
		return it, credentials.Token{}, ErrNotGenerated
	}

	switch it.Export.Phase() {
	case items.ExportInProgress:
		return it, credentials.Token{}, ErrExportInProgress
	case items.ExportDone:
		return it, credentials.Token{}, ErrAlreadyExported
	}

	if !s.creds.Valid() {
		return it, credentials.Token{}, credentials.ErrNotSignedIn
	}
	token, ok := s.creds.Token()
	if !ok {
		return it, credentials.Token{}, credentials.ErrNotSignedIn
	}

	claimed, err := s.registry.Update(id, items.SetExport(items.Exporting()))
	if err != nil {
		s.logger.ErrorContext(ctx, "export claim rejected", "item_id", id, "error", err)
		return it, credentials.Token{}, err
	}
	return claimed, token, nil
}

func (s *Session) finishExport(ctx context.Context, id uuid.UUID, state items.Export) (items.Item, error) {
	it, err := s.registry.Update(id, items.SetExport(state))
	if err != nil {
		s.logger.ErrorContext(ctx, "registry update rejected", "item_id", id, "error", err)
	}
	return it, nil
}

package services

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// WatchService keeps the knowledge store in sync with a stream of
// source changes: created or updated sources are (re-)ingested,
// deleted sources are removed. One failing event is logged and the
// loop continues.
type WatchService struct {
	ingestor driving.Ingestor
	store    driven.KnowledgeStore
	level    domain.SummaryLevel
}

// NewWatchService creates a watch loop consumer.
func NewWatchService(ingestor driving.Ingestor, store driven.KnowledgeStore, level domain.SummaryLevel) *WatchService {
	return &WatchService{ingestor: ingestor, store: store, level: level}
}

// Run consumes change and error channels until the context is
// cancelled or the change channel closes. Watcher errors are logged,
// not fatal.
func (s *WatchService) Run(ctx context.Context, changes <-chan domain.SourceChange, errs <-chan error) error {
	logger.Section("Watch Loop")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watcher error: %v", err)

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			s.apply(ctx, change)
		}
	}
}

// apply reconciles one change against the store.
func (s *WatchService) apply(ctx context.Context, change domain.SourceChange) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		// Replace any earlier ingestion of the same source before
		// re-ingesting.
		if err := s.removeBySourceRef(ctx, change.Ref); err != nil {
			logger.Warn("Replacing %s failed: %v", change.Ref, err)
			return
		}
		if _, err := s.ingestor.IngestSource(ctx, change.Ref, driving.IngestOptions{SummaryLevel: s.level}); err != nil {
			logger.Warn("Ingesting %s failed: %v", change.Ref, err)
		}

	case domain.ChangeDeleted:
		if err := s.removeBySourceRef(ctx, change.Ref); err != nil {
			logger.Warn("Removing %s failed: %v", change.Ref, err)
		}
	}
}

// removeBySourceRef deletes the document ingested from ref, if any.
func (s *WatchService) removeBySourceRef(ctx context.Context, ref string) error {
	doc, found, err := s.store.FindBySourceRef(ctx, ref)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	_, err = s.store.DeleteDocument(ctx, doc.ID)
	return err
}

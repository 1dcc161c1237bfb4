package services

import (
	"context"
	"fmt"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports a read-only snapshot of the knowledge store.
type StatusService struct {
	store   driven.KnowledgeStore
	backend string
}

// NewStatusService creates a status reporter. backend names the
// storage implementation in reports.
func NewStatusService(store driven.KnowledgeStore, backend string) *StatusService {
	return &StatusService{store: store, backend: backend}
}

// Status aggregates store counts with a per-document listing.
func (s *StatusService) Status(ctx context.Context) (domain.StoreStatus, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.StoreStatus{}, fmt.Errorf("reading store stats: %w", err)
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return domain.StoreStatus{}, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]domain.DocumentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = domain.DocumentInfo{
			ID:         doc.ID,
			Title:      doc.Title,
			SourceKind: doc.SourceKind,
			ChunkCount: len(doc.ChunkIDs),
			CreatedAt:  doc.CreatedAt,
			HasSummary: doc.Summaries.HasAny(),
		}
	}

	return domain.StoreStatus{
		DocumentCount: stats.DocumentCount,
		ChunkCount:    stats.ChunkCount,
		EmbeddingDim:  stats.EmbeddingDim,
		StorageBytes:  stats.StorageBytes,
		Backend:       s.backend,
		Documents:     infos,
	}, nil
}

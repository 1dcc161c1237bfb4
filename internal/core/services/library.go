package services

import (
	"context"
	"fmt"

	"github.com/korpus-labs/korpus-cli/internal/chunker"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.Librarian = (*LibraryService)(nil)

// LibraryService manages stored documents: list, inspect, delete,
// clear. It adds no policy over the store beyond text reconstruction.
type LibraryService struct {
	store   driven.KnowledgeStore
	chunker *chunker.Chunker
}

// NewLibraryService creates a document management service.
func NewLibraryService(store driven.KnowledgeStore, ch *chunker.Chunker) *LibraryService {
	return &LibraryService{store: store, chunker: ch}
}

// List returns all documents in insertion order.
func (s *LibraryService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves one document by id.
func (s *LibraryService) Get(ctx context.Context, documentID string) (domain.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// GetContent rebuilds the document's original text from its chunks.
func (s *LibraryService) GetContent(ctx context.Context, documentID string) (string, error) {
	chunks, err := s.store.GetChunks(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("loading chunks: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return chunker.Reassemble(texts, s.chunker.Overlap()), nil
}

// Delete removes a document and its chunks. Reports whether it
// existed.
func (s *LibraryService) Delete(ctx context.Context, documentID string) (bool, error) {
	existed, err := s.store.DeleteDocument(ctx, documentID)
	if err != nil {
		return false, err
	}
	if existed {
		logger.Info("Deleted document %s", documentID)
	}
	return existed, nil
}

// Clear removes every document and chunk and resets the embedding
// dimension.
func (s *LibraryService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	logger.Info("Cleared knowledge store")
	return nil
}

package driving

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// Librarian is the management surface over the knowledge store:
// list, inspect, delete, clear. It maps 1:1 onto store contracts and
// adds no policy of its own.
type Librarian interface {
	// List returns all documents in insertion order.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by id.
	Get(ctx context.Context, documentID string) (domain.Document, error)

	// GetContent returns the document's reconstructed text with the
	// chunk overlap trimmed.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes a document and its chunks.
	// Reports whether it existed.
	Delete(ctx context.Context, documentID string) (bool, error)

	// Clear removes all documents and chunks.
	Clear(ctx context.Context) error
}

// StatusReporter aggregates a read-only view of the store.
type StatusReporter interface {
	// Status reports document/chunk counts, the embedding dimension,
	// and the storage footprint, consistent with the last committed
	// mutation.
	Status(ctx context.Context) (domain.StoreStatus, error)
}

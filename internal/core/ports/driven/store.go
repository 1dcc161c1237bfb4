package driven

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// KnowledgeStore persists documents, chunks, and their embeddings.
//
// Mutations are serialized by the implementation (single-writer) and
// are durable before they return: a successful call is observable by
// readers and survives a restart; a failed call leaves the store at
// the prior committed state. Reads never see a half-written state.
//
// Two implementations exist: the snapshot store (in-memory tables
// mirrored to one versioned JSON file, replaced atomically) and the
// SQLite store.
type KnowledgeStore interface {
	// InsertDocument registers a document in Pending state.
	// Fails with domain.ErrDuplicateDocument if the id exists.
	InsertDocument(ctx context.Context, doc domain.Document) error

	// InsertChunks stores a document's chunks with embeddings and
	// marks the document Indexed. All-or-nothing: it validates every
	// chunk before mutating anything.
	// Fails with domain.ErrUnknownDocument if the document was not
	// registered, and domain.ErrDimensionMismatch if any embedding
	// disagrees with the store's established dimension.
	InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// AttachSummary populates one summary level on a document.
	AttachSummary(ctx context.Context, documentID string, level domain.SummaryLevel, text string) error

	// DeleteDocument removes the document and all its chunks.
	// Reports whether the document existed.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// Clear removes all documents and chunks and resets the
	// embedding dimension to unset.
	Clear(ctx context.Context) error

	// GetDocument retrieves a document by id.
	// Fails with domain.ErrUnknownDocument if absent.
	GetDocument(ctx context.Context, documentID string) (domain.Document, error)

	// FindBySourceRef returns the document ingested from the given
	// source reference, if any.
	FindBySourceRef(ctx context.Context, ref string) (domain.Document, bool, error)

	// ListDocuments returns all documents in insertion order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetChunks retrieves a document's chunks in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// AllChunks returns every stored chunk in insertion order, for
	// retrieval scans.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// Stats returns the store's aggregate view of itself.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources, flushing any pending state.
	Close() error
}

package domain

import "time"

// StoreStats is the knowledge store's aggregate view of itself.
type StoreStats struct {
	// DocumentCount is the number of stored documents.
	DocumentCount int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// EmbeddingDim is the established embedding dimension,
	// 0 while unset.
	EmbeddingDim int

	// StorageBytes is the on-disk footprint of the store.
	StorageBytes int64
}

// DocumentInfo is the per-document line in a status report.
type DocumentInfo struct {
	// ID is the document id.
	ID string

	// Title is the document title.
	Title string

	// SourceKind records where the document came from.
	SourceKind SourceKind

	// ChunkCount is the number of chunks the document owns.
	ChunkCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// HasSummary reports whether any summary level is populated.
	HasSummary bool
}

// StoreStatus is the full status report: aggregate stats plus a
// per-document listing. Pure read; reflects the last committed
// mutation.
type StoreStatus struct {
	// DocumentCount is the number of stored documents.
	DocumentCount int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// EmbeddingDim is the established embedding dimension, 0 while unset.
	EmbeddingDim int

	// StorageBytes is the on-disk footprint of the store.
	StorageBytes int64

	// Backend names the storage backend in use.
	Backend string

	// Documents lists the stored documents in insertion order.
	Documents []DocumentInfo
}

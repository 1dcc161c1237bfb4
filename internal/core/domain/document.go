package domain

import (
	"strconv"
	"time"
)

// DocumentStatus tracks a document through its ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending means the document is registered but its chunks
	// are not yet durably stored.
	StatusPending DocumentStatus = "pending"

	// StatusIndexed means all chunks and embeddings are durably stored.
	StatusIndexed DocumentStatus = "indexed"
)

// Document represents an ingested document with metadata.
// Once indexed it is owned exclusively by the knowledge store and is
// removed only by explicit delete or clear operations.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// SourceKind records where the document came from.
	SourceKind SourceKind

	// SourceRef is the original location (file path, URL, etc).
	// Empty for raw text ingested without a source.
	SourceRef string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// ChunkIDs lists the document's chunk ids in position order.
	ChunkIDs []string

	// Summaries holds the lazily populated summary levels.
	Summaries Summaries

	// Status is the ingestion lifecycle state.
	Status DocumentStatus
}

// Summaries holds the generated summaries per level.
// A level is empty until it has been generated.
type Summaries struct {
	Quick    string
	Standard string
	Detailed string
}

// Get returns the summary for the given level.
func (s Summaries) Get(level SummaryLevel) string {
	switch level {
	case SummaryQuick:
		return s.Quick
	case SummaryDetailed:
		return s.Detailed
	default:
		return s.Standard
	}
}

// Set stores the summary for the given level.
func (s *Summaries) Set(level SummaryLevel, text string) {
	switch level {
	case SummaryQuick:
		s.Quick = text
	case SummaryDetailed:
		s.Detailed = text
	default:
		s.Standard = text
	}
}

// HasAny reports whether at least one summary level is populated.
func (s Summaries) HasAny() bool {
	return s.Quick != "" || s.Standard != "" || s.Detailed != ""
}

// Chunk is the unit of embedding and retrieval within a document.
type Chunk struct {
	// ID is unique across the store and derived deterministically
	// from (DocumentID, Position). See ChunkID.
	ID string

	// DocumentID is a back-reference to the owning document.
	DocumentID string

	// Position is the 0-based ordinal within the document.
	Position int

	// Text is the chunk's text, including the overlap prefix
	// duplicated from the previous chunk.
	Text string

	// Embedding is the vector representation used for retrieval.
	Embedding []float32
}

// ChunkID derives the deterministic chunk identifier for a document
// position. Identical (documentID, position) pairs always produce the
// same id, keeping re-ingestion after an explicit delete idempotent.
func ChunkID(documentID string, position int) string {
	return documentID + ":" + strconv.Itoa(position)
}

package driving

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// DocumentID is the id to register the document under.
	// Empty means the pipeline assigns one.
	DocumentID string

	// Title is the human-readable title. Empty means derived from
	// the source.
	Title string

	// Text is the raw text to ingest. Required.
	Text string

	// Kind records where the text came from.
	Kind domain.SourceKind

	// SourceRef is the original location, if any.
	SourceRef string

	// SummaryLevel selects the summary depth. Empty means standard.
	SummaryLevel domain.SummaryLevel
}

// IngestOptions configures source-based ingestion.
type IngestOptions struct {
	// Title overrides the provider-derived title.
	Title string

	// SummaryLevel selects the summary depth. Empty means standard.
	SummaryLevel domain.SummaryLevel
}

// Ingestor runs the ingestion pipeline: chunk, embed, store,
// summarise. Single-document ingestion is all-or-nothing; a failure
// at any step rolls the document back.
type Ingestor interface {
	// Ingest processes one document from raw text.
	Ingest(ctx context.Context, req IngestRequest) (domain.Document, error)

	// IngestSource resolves a content provider for the reference,
	// fetches text, and ingests it. Provider failures surface as
	// *domain.IngestionError attributed to the ref.
	IngestSource(ctx context.Context, ref string, opts IngestOptions) (domain.Document, error)

	// IngestBatch ingests each source independently; per-item
	// failures are recorded without aborting the batch. When at
	// least one item succeeds, the result carries a unified summary
	// synthesized from the successes' standard summaries.
	IngestBatch(ctx context.Context, refs []string, opts IngestOptions) (domain.BatchResult, error)
}

package domain

// Default retrieval and answering parameters.
const (
	DefaultTopK            = 5
	DefaultMinScore        = 0.25
	DefaultContextTokens   = 3000
	DefaultAnswerTokens    = 500
	DefaultTemperature     = 0.1
	DefaultUnifiedBudget   = 12000
	DefaultSummaryInputCap = 50000
)

// ScoredChunk is a retrieval hit: a stored chunk with its cosine
// similarity against the query embedding.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

// AskOptions configures a question-answering call.
type AskOptions struct {
	// TopK is the maximum number of chunks to retrieve.
	TopK int

	// MinScore is the similarity threshold below which chunks are
	// discarded. Nil means the default; an explicit value is used
	// as-is, so zero or a negative disables the threshold (cosine
	// scores can legitimately be negative).
	MinScore *float64

	// MaxContextTokens bounds the assembled context. Whole chunks
	// are included greedily in descending score order; a chunk is
	// never split to fit.
	MaxContextTokens int
}

// Normalise fills unset fields with defaults.
func (o AskOptions) Normalise() AskOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinScore == nil {
		v := DefaultMinScore
		o.MinScore = &v
	}
	if o.MaxContextTokens <= 0 {
		o.MaxContextTokens = DefaultContextTokens
	}
	return o
}

// Answer is the outcome of a question-answering call.
type Answer struct {
	// Text is the generated answer, or the defined no-context
	// message when NoContext is true.
	Text string

	// CitedDocumentIDs are the distinct ids of documents whose
	// chunks were actually included in the context, in context
	// assembly order.
	CitedDocumentIDs []string

	// NoContext is true when retrieval produced no chunk above the
	// threshold and the generation capability was never invoked.
	NoContext bool
}

// Messages returned for the empty-retrieval short circuit.
const (
	// NoDocumentsMessage is returned when the store holds no documents.
	NoDocumentsMessage = "No documents have been ingested yet. Ingest documents first with the process_document tool."

	// NoRelevantContextMessage is returned when no stored chunk scores
	// above the threshold for the question.
	NoRelevantContextMessage = "I couldn't find relevant information in the stored documents to answer your question."
)

// BatchItemResult records the outcome for one source in a batch.
type BatchItemResult struct {
	// Ref is the source reference the item was ingested from.
	Ref string

	// DocumentID is set on success.
	DocumentID string

	// Title is the stored document title on success.
	Title string

	// Err is the failure reason; nil on success.
	Err error
}

// Succeeded reports whether the item was ingested.
func (r BatchItemResult) Succeeded() bool {
	return r.Err == nil
}

// BatchResult aggregates a batch ingestion run.
type BatchResult struct {
	// Items holds one result per source, in input order.
	Items []BatchItemResult

	// UnifiedSummary is the cross-document summary synthesized from
	// the successful items' standard summaries. Empty when no item
	// succeeded or unified summarisation failed.
	UnifiedSummary string

	// UnifiedSummaryErr records a unified-summary failure. The batch
	// itself is still considered successful for its succeeded items.
	UnifiedSummaryErr error
}

// Succeeded counts the items that were ingested.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, item := range b.Items {
		if item.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts the items that were not ingested.
func (b BatchResult) Failed() int {
	return len(b.Items) - b.Succeeded()
}

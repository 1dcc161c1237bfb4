package driving

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// Answerer answers natural-language questions over the stored
// documents: embed the question, retrieve relevant chunks, assemble a
// bounded context, and invoke the generation capability.
//
// When no chunk scores above the threshold it short-circuits with a
// defined no-context Answer and never calls the generation capability.
type Answerer interface {
	// Answer responds to a question with citations.
	Answer(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error)
}

// Searcher exposes retrieval without generation: embed the query and
// rank stored chunks by cosine similarity.
type Searcher interface {
	// Search returns the top chunks for a text query, descending by
	// score, thresholded by minScore.
	Search(ctx context.Context, query string, k int, minScore float64) ([]domain.ScoredChunk, error)
}

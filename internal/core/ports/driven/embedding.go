package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
//
// Note: this is separate from KnowledgeStore, which stores vectors.
// EmbeddingProvider generates vectors; the store persists them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Google Gemini (gemini-embedding-001)
//
// Failures wrap domain.ErrEmbeddingFailed so callers can classify and
// retry them.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Results are index-aligned with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 3072).
	// This must agree with the store's established dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight request.
	// Used at startup before committing to a provider.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

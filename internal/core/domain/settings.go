package domain

import (
	"errors"
	"fmt"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the knowledge store implementation.
type StorageBackend string

const (
	// StorageSnapshot is the in-memory store mirrored to one
	// versioned JSON snapshot file.
	StorageSnapshot StorageBackend = "snapshot"

	// StorageSQLite is the SQLite-backed store.
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSnapshot || b == StorageSQLite
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Default configuration values.
const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 100
)

// StorageSettings holds knowledge store configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// Dir is the data directory holding the snapshot or database.
	Dir string
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// MaxSize is the maximum chunk size in characters.
	MaxSize int

	// Overlap is the number of characters duplicated between
	// consecutive chunks.
	Overlap int
}

// RetrievalSettings holds retrieval defaults.
type RetrievalSettings struct {
	// TopK is the default number of chunks to retrieve.
	TopK int

	// MinScore is the default similarity threshold.
	MinScore float64
}

// QASettings holds question-answering defaults.
type QASettings struct {
	// MaxContextTokens bounds the assembled context.
	MaxContextTokens int

	// MaxAnswerTokens bounds the generated answer.
	MaxAnswerTokens int

	// Temperature is the generation temperature.
	Temperature float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds text-generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (cloud providers).
	APIKey string
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// SourceSettings holds content provider credentials.
type SourceSettings struct {
	// GitHubToken authenticates github:// refs. Optional; unauthenticated
	// requests work for public repositories at a lower rate limit.
	GitHubToken string

	// DriveToken authenticates gdrive:// refs (OAuth access token).
	DriveToken string
}

// Settings holds all application settings.
type Settings struct {
	// Storage holds knowledge store settings.
	Storage StorageSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Retrieval holds retrieval defaults.
	Retrieval RetrievalSettings

	// QA holds question-answering defaults.
	QA QASettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generation holds text-generation provider settings.
	Generation GenerationSettings

	// Sources holds content provider credentials.
	Sources SourceSettings
}

// DefaultSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them via
// `korpus config` or environment variables.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			Backend: StorageSnapshot,
		},
		Chunking: ChunkingSettings{
			MaxSize: DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:     DefaultTopK,
			MinScore: DefaultMinScore,
		},
		QA: QASettings{
			MaxContextTokens: DefaultContextTokens,
			MaxAnswerTokens:  DefaultAnswerTokens,
			Temperature:      DefaultTemperature,
		},
	}
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	if s.Chunking.MaxSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative", ErrInvalidInput)
	}
	if s.Chunking.Overlap >= s.Chunking.MaxSize {
		return fmt.Errorf("%w: chunk overlap must be smaller than chunk size", ErrInvalidInput)
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval top-k must be positive", ErrInvalidInput)
	}
	if s.QA.MaxContextTokens <= 0 {
		return fmt.Errorf("%w: context token budget must be positive", ErrInvalidInput)
	}
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Generation.Provider != "" && !s.Generation.Provider.IsValid() {
		return fmt.Errorf("%w: unknown generation provider %q", ErrInvalidInput, s.Generation.Provider)
	}
	return nil
}

// ErrNotConfigured indicates a required provider has no usable settings.
var ErrNotConfigured = errors.New("provider not configured")

package file

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Configuration keys. The TOML file uses sections; the store exposes
// them as dot-notation keys.
const (
	KeyStorageBackend = "storage.backend"
	KeyStorageDir     = "storage.dir"

	KeyChunkMaxSize = "chunking.max_size"
	KeyChunkOverlap = "chunking.overlap"

	KeyRetrievalTopK     = "retrieval.top_k"
	KeyRetrievalMinScore = "retrieval.min_score"

	KeyQAContextTokens = "qa.max_context_tokens"
	KeyQAAnswerTokens  = "qa.max_answer_tokens"
	KeyQATemperature   = "qa.temperature"

	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingAPIKey   = "embedding.api_key"

	KeyGenerationProvider = "generation.provider"
	KeyGenerationModel    = "generation.model"
	KeyGenerationBaseURL  = "generation.base_url"
	KeyGenerationAPIKey   = "generation.api_key"

	KeyGitHubToken = "sources.github_token"
	KeyDriveToken  = "sources.drive_token"
)

// envOverrides are environment variables overlaid on the stored
// settings. Processed with the KORPUS prefix (KORPUS_EMBEDDING_API_KEY
// and so on); secrets in the environment beat secrets on disk.
type envOverrides struct {
	StorageBackend string `envconfig:"STORAGE_BACKEND"`
	StorageDir     string `envconfig:"STORAGE_DIR"`

	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingBaseURL  string `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string `envconfig:"EMBEDDING_API_KEY"`

	GenerationProvider string `envconfig:"GENERATION_PROVIDER"`
	GenerationModel    string `envconfig:"GENERATION_MODEL"`
	GenerationBaseURL  string `envconfig:"GENERATION_BASE_URL"`
	GenerationAPIKey   string `envconfig:"GENERATION_API_KEY"`

	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	DriveToken  string `envconfig:"DRIVE_TOKEN"`
}

// LoadSettings builds the typed settings from the config store with
// environment overrides applied, then validates them.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	if v := store.GetString(KeyStorageBackend); v != "" {
		settings.Storage.Backend = domain.StorageBackend(v)
	}
	if v := store.GetString(KeyStorageDir); v != "" {
		settings.Storage.Dir = v
	}

	if v := store.GetInt(KeyChunkMaxSize); v > 0 {
		settings.Chunking.MaxSize = v
	}
	if v, ok := store.Get(KeyChunkOverlap); ok {
		if n, isInt := asInt(v); isInt && n >= 0 {
			settings.Chunking.Overlap = n
		}
	}

	if v := store.GetInt(KeyRetrievalTopK); v > 0 {
		settings.Retrieval.TopK = v
	}
	if v := store.GetFloat(KeyRetrievalMinScore); v > 0 {
		settings.Retrieval.MinScore = v
	}

	if v := store.GetInt(KeyQAContextTokens); v > 0 {
		settings.QA.MaxContextTokens = v
	}
	if v := store.GetInt(KeyQAAnswerTokens); v > 0 {
		settings.QA.MaxAnswerTokens = v
	}
	if v := store.GetFloat(KeyQATemperature); v > 0 {
		settings.QA.Temperature = v
	}

	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProvider(store.GetString(KeyEmbeddingProvider)),
		Model:    store.GetString(KeyEmbeddingModel),
		BaseURL:  store.GetString(KeyEmbeddingBaseURL),
		APIKey:   store.GetString(KeyEmbeddingAPIKey),
	}
	settings.Generation = domain.GenerationSettings{
		Provider: domain.AIProvider(store.GetString(KeyGenerationProvider)),
		Model:    store.GetString(KeyGenerationModel),
		BaseURL:  store.GetString(KeyGenerationBaseURL),
		APIKey:   store.GetString(KeyGenerationAPIKey),
	}
	settings.Sources = domain.SourceSettings{
		GitHubToken: store.GetString(KeyGitHubToken),
		DriveToken:  store.GetString(KeyDriveToken),
	}

	if err := applyEnvOverrides(&settings); err != nil {
		return domain.Settings{}, err
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// applyEnvOverrides overlays KORPUS_* environment variables.
func applyEnvOverrides(settings *domain.Settings) error {
	var env envOverrides
	if err := envconfig.Process("korpus", &env); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}

	setIfPresent(&settings.Storage.Dir, env.StorageDir)
	if env.StorageBackend != "" {
		settings.Storage.Backend = domain.StorageBackend(env.StorageBackend)
	}

	if env.EmbeddingProvider != "" {
		settings.Embedding.Provider = domain.AIProvider(env.EmbeddingProvider)
	}
	setIfPresent(&settings.Embedding.Model, env.EmbeddingModel)
	setIfPresent(&settings.Embedding.BaseURL, env.EmbeddingBaseURL)
	setIfPresent(&settings.Embedding.APIKey, env.EmbeddingAPIKey)

	if env.GenerationProvider != "" {
		settings.Generation.Provider = domain.AIProvider(env.GenerationProvider)
	}
	setIfPresent(&settings.Generation.Model, env.GenerationModel)
	setIfPresent(&settings.Generation.BaseURL, env.GenerationBaseURL)
	setIfPresent(&settings.Generation.APIKey, env.GenerationAPIKey)

	setIfPresent(&settings.Sources.GitHubToken, env.GitHubToken)
	setIfPresent(&settings.Sources.DriveToken, env.DriveToken)

	return nil
}

func setIfPresent(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

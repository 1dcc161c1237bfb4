// Package ai provides factory functions for creating AI capability adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/korpus-labs/korpus-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/korpus-labs/korpus-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/korpus-labs/korpus-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/korpus-labs/korpus-cli/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/korpus-labs/korpus-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/korpus-labs/korpus-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/korpus-labs/korpus-cli/internal/adapters/driven/llm/openai"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingProvider creates an embedding provider and
// validates connectivity with a bounded ping.
func CreateAndValidateEmbeddingProvider(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	provider, err := CreateEmbeddingProvider(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'korpus config' to fix", domain.ErrEmbeddingFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := provider.Ping(pingCtx); err != nil {
		provider.Close() //nolint:errcheck // Best-effort cleanup on failed validation
		return nil, fmt.Errorf("%w: provider unreachable (%w). Run 'korpus config' to fix",
			domain.ErrEmbeddingFailed, err)
	}

	return provider, nil
}

// CreateAndValidateGenerationProvider creates a text-generation provider
// and validates connectivity with a bounded ping.
func CreateAndValidateGenerationProvider(ctx context.Context, settings domain.GenerationSettings) (driven.TextGenerationProvider, error) {
	provider, err := CreateGenerationProvider(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'korpus config' to fix", domain.ErrGenerationFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := provider.Ping(pingCtx); err != nil {
		provider.Close() //nolint:errcheck // Best-effort cleanup on failed validation
		return nil, fmt.Errorf("%w: provider unreachable (%w). Run 'korpus config' to fix",
			domain.ErrGenerationFailed, err)
	}

	return provider, nil
}

// CreateEmbeddingProvider creates the embedding provider the settings name.
func CreateEmbeddingProvider(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider not configured")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingProvider(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingProvider(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingProvider(ctx, geminiembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderAnthropic:
		// Anthropic does not offer an embeddings endpoint.
		return nil, fmt.Errorf("anthropic does not support embeddings, use openai, ollama or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerationProvider creates the generation provider the settings name.
func CreateGenerationProvider(ctx context.Context, settings domain.GenerationSettings) (driven.TextGenerationProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("generation provider not configured")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewGenerationProvider(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewGenerationProvider(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewGenerationProvider(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewGenerationProvider(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}

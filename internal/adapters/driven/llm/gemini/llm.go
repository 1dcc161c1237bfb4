// Package gemini provides a text-generation provider adapter using the
// Google Gemini API via the official generative-ai-go client.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure GenerationProvider implements the interface.
var _ driven.TextGenerationProvider = (*GenerationProvider)(nil)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini generation provider.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string
}

// GenerationProvider produces text using the Gemini API.
type GenerationProvider struct {
	client *genai.Client
	model  string
}

// NewGenerationProvider creates a new Gemini generation provider.
// The context is used only for client construction.
func NewGenerationProvider(ctx context.Context, cfg Config) (*GenerationProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GenerationProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Generate produces a text completion for the prompt.
func (p *GenerationProvider) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	model := p.client.GenerativeModel(p.model)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}
	if opts.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %w", domain.ErrGenerationFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", domain.ErrGenerationFailed)
	}

	// Concatenate all text parts of the first candidate.
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result.WriteString(string(text))
		}
	}
	if result.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text content", domain.ErrGenerationFailed)
	}

	return result.String(), nil
}

// ModelName returns the name of the model being used.
func (p *GenerationProvider) ModelName() string {
	return p.model
}

// Ping validates the API key by listing available models.
func (p *GenerationProvider) Ping(ctx context.Context) error {
	it := p.client.ListModels(ctx)
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client connection.
func (p *GenerationProvider) Close() error {
	return p.client.Close()
}

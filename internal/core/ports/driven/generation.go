package driven

import "context"

// TextGenerationProvider produces natural-language text from a prompt.
// It serves both question answering and summarisation; summary levels
// are prompt-shaping on the caller's side, not separate operations.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4 family)
//   - Ollama (local models)
//   - Google Gemini
//
// Failures wrap domain.ErrGenerationFailed so callers can classify and
// retry them.
type TextGenerationProvider interface {
	// Generate produces a text completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// SystemPrompt sets the system instruction where the provider
	// supports one; otherwise it is prepended to the prompt.
	SystemPrompt string
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultSettings tests defaults are valid and providers unconfigured
func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, StorageSnapshot, s.Storage.Backend)
	assert.Equal(t, DefaultChunkSize, s.Chunking.MaxSize)
	assert.Equal(t, DefaultChunkOverlap, s.Chunking.Overlap)
	assert.Equal(t, DefaultTopK, s.Retrieval.TopK)
	assert.InDelta(t, DefaultMinScore, s.Retrieval.MinScore, 1e-9)
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.Generation.IsConfigured())
}

// TestSettings_Validate tests rejection of inconsistent settings
func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown backend", func(s *Settings) { s.Storage.Backend = "etcd" }},
		{"zero chunk size", func(s *Settings) { s.Chunking.MaxSize = 0 }},
		{"negative overlap", func(s *Settings) { s.Chunking.Overlap = -1 }},
		{"overlap >= size", func(s *Settings) { s.Chunking.Overlap = s.Chunking.MaxSize }},
		{"zero top-k", func(s *Settings) { s.Retrieval.TopK = 0 }},
		{"zero context budget", func(s *Settings) { s.QA.MaxContextTokens = 0 }},
		{"unknown embedding provider", func(s *Settings) { s.Embedding.Provider = "watson" }},
		{"unknown generation provider", func(s *Settings) { s.Generation.Provider = "watson" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

// TestAIProvider_RequiresAPIKey tests key requirements per provider
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
}

// TestEmbeddingSettings_IsConfigured tests configuration detection
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.False(t, EmbeddingSettings{}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-x"}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
}

// TestAskOptions_Normalise tests defaulting of unset ask options
func TestAskOptions_Normalise(t *testing.T) {
	opts := AskOptions{}.Normalise()

	assert.Equal(t, DefaultTopK, opts.TopK)
	require.NotNil(t, opts.MinScore)
	assert.InDelta(t, DefaultMinScore, *opts.MinScore, 1e-9)
	assert.Equal(t, DefaultContextTokens, opts.MaxContextTokens)

	half := 0.5
	custom := AskOptions{TopK: 9, MinScore: &half, MaxContextTokens: 100}.Normalise()
	assert.Equal(t, 9, custom.TopK)
	assert.InDelta(t, 0.5, *custom.MinScore, 1e-9)
	assert.Equal(t, 100, custom.MaxContextTokens)

	// An explicit zero disables the threshold rather than falling
	// back to the default.
	zero := 0.0
	open := AskOptions{MinScore: &zero}.Normalise()
	assert.Zero(t, *open.MinScore)
}

// TestBatchResult_Counts tests success/failure tallies
func TestBatchResult_Counts(t *testing.T) {
	batch := BatchResult{
		Items: []BatchItemResult{
			{Ref: "a.txt", DocumentID: "doc-a"},
			{Ref: "b.txt", Err: ErrUnknownDocument},
			{Ref: "c.txt", DocumentID: "doc-c"},
		},
	}

	assert.Equal(t, 2, batch.Succeeded())
	assert.Equal(t, 1, batch.Failed())
	assert.True(t, batch.Items[0].Succeeded())
	assert.False(t, batch.Items[1].Succeeded())
}

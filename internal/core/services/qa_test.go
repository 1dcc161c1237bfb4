package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/storage/snapshot"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// --- Test helpers ---

func newTestQAService(store *snapshot.Store, embedder *mockEmbedder, generator *mockGenerator) *QAService {
	retriever := NewRetrievalService(store, embedder)
	retriever.sleep = noSleep

	svc := NewQAService(store, retriever, generator)
	svc.sleep = noSleep
	return svc
}

// --- Tests ---

func TestQAService_Answer_QuestionTooShort(t *testing.T) {
	store := setupTestStore(t)
	svc := newTestQAService(store, &mockEmbedder{}, &mockGenerator{})

	_, err := svc.Answer(context.Background(), " hi ", domain.AskOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQAService_Answer_EmptyStore(t *testing.T) {
	store := setupTestStore(t)
	embedder := &mockEmbedder{}
	generator := &mockGenerator{}
	svc := newTestQAService(store, embedder, generator)

	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.NoDocumentsMessage, answer.Text)
	assert.True(t, answer.NoContext)
	assert.Empty(t, answer.CitedDocumentIDs)
	// Neither capability is touched when there is nothing to search.
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, generator.calls)
}

func TestQAService_Answer_NoRelevantChunks(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{0, 1, 0, 0})

	embedder := &mockEmbedder{embedding: []float32{1, 0, 0, 0}}
	generator := &mockGenerator{}
	svc := newTestQAService(store, embedder, generator)

	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.NoRelevantContextMessage, answer.Text)
	assert.True(t, answer.NoContext)
	assert.Empty(t, answer.CitedDocumentIDs)
	assert.Equal(t, 0, generator.calls)
}

func TestQAService_Answer_ExplicitZeroThreshold(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{0, 1, 0, 0})

	// The chunk is orthogonal to the query (score 0). With the
	// threshold explicitly disabled it still feeds the context
	// instead of being bumped to the default cutoff.
	embedder := &mockEmbedder{embedding: []float32{1, 0, 0, 0}}
	generator := &mockGenerator{result: "Answer from everything."}
	svc := newTestQAService(store, embedder, generator)

	zero := 0.0
	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{MinScore: &zero})
	require.NoError(t, err)

	assert.False(t, answer.NoContext)
	assert.Equal(t, []string{"doc-1"}, answer.CitedDocumentIDs)
	assert.Equal(t, 1, generator.calls)
}

func TestQAService_Answer_GeneratesFromContext(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0, 0, 0})
	seedChunks(t, store, "doc-2", []float32{0, 1, 0, 0})

	embedder := &mockEmbedder{embedding: []float32{1, 0, 0, 0}}
	generator := &mockGenerator{result: "Go was designed at Google."}
	svc := newTestQAService(store, embedder, generator)

	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Go was designed at Google.", answer.Text)
	assert.False(t, answer.NoContext)
	assert.Equal(t, []string{"doc-1"}, answer.CitedDocumentIDs)

	// The prompt carries the assembled context and the question.
	assert.True(t, strings.HasPrefix(generator.lastPrompt, "Context:\n"))
	assert.Contains(t, generator.lastPrompt, "Document: Doc doc-1\nchunk doc-1:0")
	assert.Contains(t, generator.lastPrompt, "Question: what is go?")
	assert.True(t, strings.HasSuffix(generator.lastPrompt, "Please answer the question based on the context provided above."))
	assert.NotContains(t, generator.lastPrompt, "chunk doc-2:0")

	assert.Equal(t, domain.DefaultAnswerTokens, generator.lastOpts.MaxTokens)
	assert.Equal(t, domain.DefaultTemperature, generator.lastOpts.Temperature)
	assert.Equal(t, qaSystemPrompt, generator.lastOpts.SystemPrompt)
}

func TestQAService_Answer_ContextBudgetStopsWholeChunks(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	seedChunks(t, store, "doc-2", []float32{3, 1})

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{result: "Answer."}
	svc := newTestQAService(store, embedder, generator)

	// Budget fits the top chunk but not the runner-up.
	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{MaxContextTokens: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"doc-1"}, answer.CitedDocumentIDs)
	assert.Contains(t, generator.lastPrompt, "chunk doc-1:0")
	assert.NotContains(t, generator.lastPrompt, "chunk doc-2:0")
}

func TestQAService_Answer_TopChunkAlwaysIncluded(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{result: "Answer."}
	svc := newTestQAService(store, embedder, generator)

	// A budget smaller than any chunk still yields a context: the
	// best chunk is never dropped.
	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{MaxContextTokens: 1})
	require.NoError(t, err)

	assert.False(t, answer.NoContext)
	assert.Equal(t, []string{"doc-1"}, answer.CitedDocumentIDs)
	assert.Contains(t, generator.lastPrompt, "chunk doc-1:0")
}

func TestQAService_Answer_CitationsDistinctPerDocument(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1",
		[]float32{1, 0},
		[]float32{1, 0},
	)

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{result: "Answer."}
	svc := newTestQAService(store, embedder, generator)

	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})
	require.NoError(t, err)

	// Two chunks from the same document cite it once.
	assert.Contains(t, generator.lastPrompt, "chunk doc-1:0")
	assert.Contains(t, generator.lastPrompt, "chunk doc-1:1")
	assert.Equal(t, []string{"doc-1"}, answer.CitedDocumentIDs)
}

func TestQAService_Answer_RetriesTransientGenerationFailure(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{
		result:   "Answer.",
		genErr:   domain.ErrGenerationFailed,
		failures: 1,
	}
	svc := newTestQAService(store, embedder, generator)

	answer, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Answer.", answer.Text)
	assert.Equal(t, 2, generator.calls)
}

func TestQAService_Answer_ExhaustedRetriesFail(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{genErr: domain.ErrGenerationFailed}
	svc := newTestQAService(store, embedder, generator)

	_, err := svc.Answer(context.Background(), "what is go?", domain.AskOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 3, generator.calls)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/storage/snapshot"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingProvider for testing.
type mockEmbedder struct {
	embedding []float32
	batch     [][]float32
	embedErr  error
	failures  int
	dims      int
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil && (m.failures == 0 || m.calls <= m.failures) {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedErr != nil && (m.failures == 0 || m.calls <= m.failures) {
		return nil, m.embedErr
	}
	if m.batch != nil {
		return m.batch, nil
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbedder) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbedder) Close() error {
	return nil
}

// --- Test helpers ---

func setupTestStore(t *testing.T) *snapshot.Store {
	t.Helper()
	store, err := snapshot.New(t.TempDir())
	require.NoError(t, err)
	return store
}

// seedChunks inserts a document whose chunks carry the given
// embeddings, one chunk per embedding.
func seedChunks(t *testing.T, store *snapshot.Store, docID string, embeddings ...[]float32) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, domain.Document{
		ID:    docID,
		Title: "Doc " + docID,
	}))

	chunks := make([]domain.Chunk, len(embeddings))
	for i, emb := range embeddings {
		chunks[i] = domain.Chunk{
			DocumentID: docID,
			Position:   i,
			Text:       "chunk " + domain.ChunkID(docID, i),
			Embedding:  emb,
		}
	}
	require.NoError(t, store.InsertChunks(ctx, docID, chunks))
}

// --- Tests ---

func TestRetrievalService_Retrieve_RanksByScore(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1",
		[]float32{1, 0, 0, 0}, // aligned with query
		[]float32{0, 1, 0, 0}, // orthogonal
		[]float32{1, 1, 0, 0}, // diagonal
	)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0, 0, 0}, 10, -1)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "doc-1:0", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "doc-1:2", results[1].Chunk.ID)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)
	assert.Equal(t, "doc-1:1", results[2].Chunk.ID)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
}

func TestRetrievalService_Retrieve_FiltersBelowThreshold(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1",
		[]float32{1, 0},
		[]float32{0, 1},
	)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "doc-1:0", results[0].Chunk.ID)
}

func TestRetrievalService_Retrieve_TruncatesToK(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1",
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0}, 2, 0)
	require.NoError(t, err)

	assert.Len(t, results, 2)
}

func TestRetrievalService_Retrieve_DefaultK(t *testing.T) {
	store := setupTestStore(t)
	embeddings := make([][]float32, 8)
	for i := range embeddings {
		embeddings[i] = []float32{1, 0}
	}
	seedChunks(t, store, "doc-1", embeddings...)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0}, 0, 0)
	require.NoError(t, err)

	assert.Len(t, results, domain.DefaultTopK)
}

func TestRetrievalService_Retrieve_TiesKeepInsertionOrder(t *testing.T) {
	store := setupTestStore(t)
	// All chunks score identically against the query.
	seedChunks(t, store, "doc-1",
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "doc-1:0", results[0].Chunk.ID)
	assert.Equal(t, "doc-1:1", results[1].Chunk.ID)
	assert.Equal(t, "doc-1:2", results[2].Chunk.ID)
}

func TestRetrievalService_Retrieve_EmptyStore(t *testing.T) {
	store := setupTestStore(t)
	svc := NewRetrievalService(store, nil)

	results, err := svc.Retrieve(context.Background(), []float32{1, 0}, 5, 0.25)
	require.NoError(t, err)

	assert.Empty(t, results)
}

func TestRetrievalService_Search_EmptyQuery(t *testing.T) {
	store := setupTestStore(t)
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder)

	results, err := svc.Search(context.Background(), "   \t\n  ", 5, 0.25)
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.calls)
}

func TestRetrievalService_Search_EmbedsAndRetrieves(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1",
		[]float32{1, 0},
		[]float32{0, 1},
	)
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	svc := NewRetrievalService(store, embedder)

	results, err := svc.Search(context.Background(), "anything", 5, 0.5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "doc-1:0", results[0].Chunk.ID)
	assert.Equal(t, 1, embedder.calls)
}

func TestRetrievalService_Search_RetriesTransientEmbedFailure(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	embedder := &mockEmbedder{
		embedding: []float32{1, 0},
		embedErr:  domain.ErrEmbeddingFailed,
		failures:  1,
	}
	svc := NewRetrievalService(store, embedder)
	svc.sleep = noSleep

	results, err := svc.Search(context.Background(), "anything", 5, 0)
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, 2, embedder.calls)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)

	// Scale invariance.
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 1}, []float32{100, 100}), 1e-9)

	// Degenerate inputs score zero instead of erroring.
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func testDocument(id string) domain.Document {
	return domain.Document{
		ID:         id,
		Title:      "Title " + id,
		SourceKind: domain.SourceText,
	}
}

func testChunks(docID string, n, dim int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		embedding := make([]float32, dim)
		embedding[i%dim] = 0.5
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(docID, i),
			DocumentID: docID,
			Position:   i,
			Text:       fmt.Sprintf("chunk %d of %s", i, docID),
			Embedding:  embedding,
		}
	}
	return chunks
}

// TestNew_CreatesSchema tests that a fresh database opens empty and
// migrated.
func TestNew_CreatesSchema(t *testing.T) {
	store, _ := newTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocumentCount)
	assert.Equal(t, 0, stats.ChunkCount)
	assert.Equal(t, 0, stats.EmbeddingDim)
}

// TestInsertDocument_Duplicate tests duplicate id rejection.
func TestInsertDocument_Duplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-1")))

	err := store.InsertDocument(ctx, testDocument("doc-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateDocument)
}

// TestInsertChunks_Lifecycle tests the pending-to-indexed transition
// and embedding blob round-trip.
func TestInsertChunks_Lifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-1")))

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, doc.Status)

	chunks := testChunks("doc-1", 3, 4)
	chunks[1].Embedding = []float32{0.1, -0.2, 0.3, -0.4}
	require.NoError(t, store.InsertChunks(ctx, "doc-1", chunks))

	doc, err = store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, doc.Status)
	assert.Equal(t, []string{"doc-1:0", "doc-1:1", "doc-1:2"}, doc.ChunkIDs)

	stored, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []float32{0.1, -0.2, 0.3, -0.4}, stored[1].Embedding)
	assert.Equal(t, 1, stored[1].Position)
}

// TestInsertChunks_UnknownDocument tests that chunks cannot be attached
// to an unregistered document.
func TestInsertChunks_UnknownDocument(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.InsertChunks(context.Background(), "missing", testChunks("missing", 1, 3))
	assert.ErrorIs(t, err, domain.ErrUnknownDocument)
}

// TestInsertChunks_DimensionMismatch tests that the established
// dimension is enforced and survives a reopen.
func TestInsertChunks_DimensionMismatch(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-1")))
	require.NoError(t, store.InsertChunks(ctx, "doc-1", testChunks("doc-1", 2, 3)))

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-2")))
	err := store.InsertChunks(ctx, "doc-2", testChunks("doc-2", 2, 5))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Nothing from the failed batch may be visible.
	all, err := store.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Close())
	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	err = reopened.InsertChunks(ctx, "doc-2", testChunks("doc-2", 2, 5))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	require.NoError(t, reopened.InsertChunks(ctx, "doc-2", testChunks("doc-2", 2, 3)))
}

// TestDeleteDocument_Cascades tests that deleting a document removes
// its chunks through the foreign key.
func TestDeleteDocument_Cascades(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-1")))
	require.NoError(t, store.InsertChunks(ctx, "doc-1", testChunks("doc-1", 3, 4)))

	existed, err := store.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, existed)

	all, err := store.AllChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	existed, err = store.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, existed)
}

// TestClear_ResetsDimension tests that clearing allows a new dimension
// to be established.
func TestClear_ResetsDimension(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-1")))
	require.NoError(t, store.InsertChunks(ctx, "doc-1", testChunks("doc-1", 2, 3)))

	require.NoError(t, store.Clear(ctx))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocumentCount)
	assert.Equal(t, 0, stats.EmbeddingDim)

	require.NoError(t, store.InsertDocument(ctx, testDocument("doc-2")))
	require.NoError(t, store.InsertChunks(ctx, "doc-2", testChunks("doc-2", 1, 9)))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.EmbeddingDim)
}

// TestReload_RoundTrip tests that a reopened database sees the full
// committed state.
func TestReload_RoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	doc.SourceKind = domain.SourceFile
	doc.SourceRef = "/tmp/notes.md"
	require.NoError(t, store.InsertDocument(ctx, doc))
	require.NoError(t, store.InsertChunks(ctx, "doc-1", testChunks("doc-1", 2, 4)))
	require.NoError(t, store.AttachSummary(ctx, "doc-1", domain.SummaryDetailed, "the long version"))
	require.NoError(t, store.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.md", got.SourceRef)
	assert.Equal(t, domain.SourceFile, got.SourceKind)
	assert.Equal(t, "the long version", got.Summaries.Detailed)
	assert.Equal(t, domain.StatusIndexed, got.Status)
	assert.Len(t, got.ChunkIDs, 2)

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.EmbeddingDim)
	assert.Greater(t, stats.StorageBytes, int64(0))
}

// TestAttachSummary_UnknownDocument tests the error for summarising a
// document that does not exist.
func TestAttachSummary_UnknownDocument(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AttachSummary(context.Background(), "missing", domain.SummaryQuick, "text")
	assert.ErrorIs(t, err, domain.ErrUnknownDocument)
}

// TestFindBySourceRef tests source reference lookup.
func TestFindBySourceRef(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("doc-1")
	doc.SourceRef = "github://acme/notes/README.md"
	require.NoError(t, store.InsertDocument(ctx, doc))

	found, ok, err := store.FindBySourceRef(ctx, "github://acme/notes/README.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "doc-1", found.ID)

	_, ok, err = store.FindBySourceRef(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestListDocuments_InsertionOrder tests listing order and chunk id
// population.
func TestListDocuments_InsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, testDocument("alpha")))
	require.NoError(t, store.InsertChunks(ctx, "alpha", testChunks("alpha", 2, 3)))
	require.NoError(t, store.InsertDocument(ctx, testDocument("beta")))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha", docs[0].ID)
	assert.Equal(t, "beta", docs[1].ID)
	assert.Len(t, docs[0].ChunkIDs, 2)
	assert.Empty(t, docs[1].ChunkIDs)
}

// TestGetChunks_UnknownDocument tests the lookup error for an
// unregistered document.
func TestGetChunks_UnknownDocument(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetChunks(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownDocument)
}

// TestFloat32BlobRoundTrip tests the embedding codec on edge values.
func TestFloat32BlobRoundTrip(t *testing.T) {
	cases := [][]float32{
		nil,
		{0},
		{1, -1, 0.5, -0.25},
		{3.4e38, -3.4e38, 1.17e-38},
	}
	for _, in := range cases {
		out := bytesToFloat32Slice(float32SliceToBytes(in))
		if len(in) == 0 {
			assert.Nil(t, out)
			continue
		}
		assert.Equal(t, in, out)
	}
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

func TestLibraryService_List(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	seedChunks(t, store, "doc-2", []float32{0, 1})
	svc := NewLibraryService(store, testChunker())

	docs, err := svc.List(context.Background())
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "doc-2", docs[1].ID)
}

func TestLibraryService_Get(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	svc := NewLibraryService(store, testChunker())
	ctx := context.Background()

	doc, err := svc.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Doc doc-1", doc.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownDocument)
}

func TestLibraryService_GetContent_ReconstructsText(t *testing.T) {
	store := setupTestStore(t)
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	ingest := newTestIngestService(store, embedder, &mockGenerator{}, nil)
	ctx := context.Background()

	doc, err := ingest.Ingest(ctx, driving.IngestRequest{Title: "Go Notes", Text: ingestText})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(doc.ChunkIDs), 2)

	svc := NewLibraryService(store, testChunker())

	content, err := svc.GetContent(ctx, doc.ID)
	require.NoError(t, err)

	// Overlap trimming restores the ingested text exactly.
	assert.Equal(t, ingestText, content)
}

func TestLibraryService_GetContent_UnknownDocument(t *testing.T) {
	store := setupTestStore(t)
	svc := NewLibraryService(store, testChunker())

	_, err := svc.GetContent(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrUnknownDocument)
}

func TestLibraryService_Delete(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	svc := NewLibraryService(store, testChunker())
	ctx := context.Background()

	existed, err := svc.Delete(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = svc.Delete(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestLibraryService_Clear(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0})
	seedChunks(t, store, "doc-2", []float32{0, 1})
	svc := NewLibraryService(store, testChunker())
	ctx := context.Background()

	require.NoError(t, svc.Clear(ctx))

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

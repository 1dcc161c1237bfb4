package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func TestStatusService_Status_EmptyStore(t *testing.T) {
	store := setupTestStore(t)
	svc := NewStatusService(store, "snapshot")

	status, err := svc.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "snapshot", status.Backend)
	assert.Zero(t, status.DocumentCount)
	assert.Zero(t, status.ChunkCount)
	assert.Zero(t, status.EmbeddingDim)
	assert.Empty(t, status.Documents)
}

func TestStatusService_Status_ReportsDocuments(t *testing.T) {
	store := setupTestStore(t)
	seedChunks(t, store, "doc-1", []float32{1, 0, 0}, []float32{0, 1, 0})
	seedChunks(t, store, "doc-2", []float32{0, 0, 1})
	ctx := context.Background()
	require.NoError(t, store.AttachSummary(ctx, "doc-1", domain.SummaryStandard, "[STANDARD SUMMARY]\n\nFacts."))

	svc := NewStatusService(store, "snapshot")

	status, err := svc.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, status.DocumentCount)
	assert.Equal(t, 3, status.ChunkCount)
	assert.Equal(t, 3, status.EmbeddingDim)
	assert.Positive(t, status.StorageBytes)

	require.Len(t, status.Documents, 2)
	first := status.Documents[0]
	assert.Equal(t, "doc-1", first.ID)
	assert.Equal(t, "Doc doc-1", first.Title)
	assert.Equal(t, 2, first.ChunkCount)
	assert.True(t, first.HasSummary)
	assert.False(t, first.CreatedAt.IsZero())

	second := status.Documents[1]
	assert.Equal(t, "doc-2", second.ID)
	assert.Equal(t, 1, second.ChunkCount)
	assert.False(t, second.HasSummary)
}

package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func newTestServer(t *testing.T) (*Server, *mockIngestor, *mockAnswerer, *mockSearcher, *mockLibrarian, *mockStatusReporter) {
	t.Helper()

	ports, ingest, answer, search, library, status := fullPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server, ingest, answer, search, library, status
}

func TestHandleProcessDocument(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)
	ingest.doc = domain.Document{
		ID:       "doc-1",
		Title:    "Report",
		ChunkIDs: []string{"doc-1:0", "doc-1:1"},
		Summaries: domain.Summaries{
			Quick: "[QUICK SUMMARY]\nShort.",
		},
	}

	_, output, err := server.handleProcessDocument(context.Background(), nil, ProcessDocumentInput{
		Path:         "/tmp/report.txt",
		SummaryLevel: "quick",
	})

	require.NoError(t, err)
	assert.Equal(t, "/tmp/report.txt", ingest.lastRef)
	assert.Equal(t, "doc-1", output.DocumentID)
	assert.Equal(t, "Report", output.Title)
	assert.Equal(t, 2, output.ChunkCount)
	assert.Equal(t, "[QUICK SUMMARY]\nShort.", output.Summary)
}

func TestHandleProcessDocument_InvalidSummaryLevel(t *testing.T) {
	server, _, _, _, _, _ := newTestServer(t)

	_, _, err := server.handleProcessDocument(context.Background(), nil, ProcessDocumentInput{
		Path:         "/tmp/report.txt",
		SummaryLevel: "exhaustive",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleProcessText(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)
	ingest.doc = domain.Document{ID: "doc-2", Title: "Notes"}

	_, output, err := server.handleProcessText(context.Background(), nil, ProcessTextInput{
		Text:  "some raw text",
		Title: "Notes",
	})

	require.NoError(t, err)
	assert.Equal(t, "some raw text", ingest.lastReq.Text)
	assert.Equal(t, "Notes", ingest.lastReq.Title)
	assert.Equal(t, domain.SourceText, ingest.lastReq.Kind)
	assert.Equal(t, domain.SummaryStandard, ingest.lastReq.SummaryLevel)
	assert.Equal(t, "doc-2", output.DocumentID)
}

func TestHandleProcessUpload(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)
	ingest.doc = domain.Document{ID: "doc-3", Title: "minutes"}

	_, output, err := server.handleProcessUpload(context.Background(), nil, ProcessUploadInput{
		Content:  "extracted upload text",
		Filename: "minutes.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "extracted upload text", ingest.lastReq.Text)
	assert.Equal(t, "minutes", ingest.lastReq.Title)
	assert.Equal(t, domain.SourceUpload, ingest.lastReq.Kind)
	assert.Equal(t, "minutes.pdf", ingest.lastReq.SourceRef)
	assert.Equal(t, "doc-3", output.DocumentID)
}

func TestHandleProcessUpload_MissingFilename(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)

	_, _, err := server.handleProcessUpload(context.Background(), nil, ProcessUploadInput{
		Content: "text without a filename",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, ingest.lastReq.Text)
}

func TestUploadTitle(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"minutes.pdf", "minutes"},
		{"notes", "notes"},
		{"dir/report.v2.txt", "report.v2"},
		{".env", ".env"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadTitle(tt.filename), tt.filename)
	}
}

func TestHandleProcessBatch(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)
	ingest.batch = domain.BatchResult{
		Items: []domain.BatchItemResult{
			{Ref: "a.txt", DocumentID: "doc-a", Title: "A"},
			{Ref: "b.txt", Err: errors.New("unreadable")},
		},
		UnifiedSummary: "Both documents cover the quarterly results.",
	}

	_, output, err := server.handleProcessBatch(context.Background(), nil, ProcessBatchInput{
		Paths: []string{"a.txt", "b.txt"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, ingest.refs)
	assert.Equal(t, 1, output.Succeeded)
	assert.Equal(t, 1, output.Failed)
	require.Len(t, output.Items, 2)
	assert.Equal(t, "doc-a", output.Items[0].DocumentID)
	assert.Empty(t, output.Items[0].Error)
	assert.Equal(t, "unreadable", output.Items[1].Error)
	assert.Equal(t, "Both documents cover the quarterly results.", output.UnifiedSummary)
}

func TestHandleProcessBatch_Empty(t *testing.T) {
	server, _, _, _, _, _ := newTestServer(t)

	_, _, err := server.handleProcessBatch(context.Background(), nil, ProcessBatchInput{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleAskQuestion(t *testing.T) {
	server, _, answer, _, _, _ := newTestServer(t)
	answer.answer = domain.Answer{
		Text:             "The answer is 42.",
		CitedDocumentIDs: []string{"doc-1", "doc-2"},
	}

	_, output, err := server.handleAskQuestion(context.Background(), nil, AskQuestionInput{
		Question: "what is the answer?",
		TopK:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, "what is the answer?", answer.lastQuestion)
	assert.Equal(t, 3, answer.lastOpts.TopK)
	assert.Equal(t, "The answer is 42.", output.Answer)
	assert.Equal(t, []string{"doc-1", "doc-2"}, output.CitedDocumentIDs)
	assert.False(t, output.NoContext)
}

func TestHandleAskQuestion_NoContext(t *testing.T) {
	server, _, answer, _, _, _ := newTestServer(t)
	answer.answer = domain.Answer{
		Text:      domain.NoRelevantContextMessage,
		NoContext: true,
	}

	_, output, err := server.handleAskQuestion(context.Background(), nil, AskQuestionInput{
		Question: "anything",
	})

	require.NoError(t, err)
	assert.True(t, output.NoContext)
	assert.Equal(t, domain.NoRelevantContextMessage, output.Answer)
}

func TestHandleSearch(t *testing.T) {
	server, _, _, search, _, _ := newTestServer(t)
	search.results = []domain.ScoredChunk{
		{
			Chunk: domain.Chunk{ID: "doc-1:0", DocumentID: "doc-1", Position: 0, Text: "hello"},
			Score: 0.91,
		},
	}

	_, output, err := server.handleSearch(context.Background(), nil, SearchInput{
		Query: "greeting",
	})

	require.NoError(t, err)
	assert.Equal(t, "greeting", search.lastQuery)
	assert.Equal(t, domain.DefaultTopK, search.lastK)
	assert.Equal(t, domain.DefaultMinScore, search.lastMinScore)
	require.Equal(t, 1, output.Count)
	assert.Equal(t, "doc-1:0", output.Results[0].ChunkID)
	assert.Equal(t, 0.91, output.Results[0].Score)
}

func TestHandleSearch_ExplicitLimits(t *testing.T) {
	server, _, _, search, _, _ := newTestServer(t)

	minScore := 0.7
	_, _, err := server.handleSearch(context.Background(), nil, SearchInput{
		Query:    "q",
		Limit:    12,
		MinScore: &minScore,
	})

	require.NoError(t, err)
	assert.Equal(t, 12, search.lastK)
	assert.Equal(t, 0.7, search.lastMinScore)
}

func TestHandleSearch_ExplicitZeroThreshold(t *testing.T) {
	server, _, _, search, _, _ := newTestServer(t)

	// min_score 0 is a real request for unthresholded retrieval, not
	// an unset field.
	zero := 0.0
	_, _, err := server.handleSearch(context.Background(), nil, SearchInput{
		Query:    "q",
		MinScore: &zero,
	})

	require.NoError(t, err)
	assert.Zero(t, search.lastMinScore)
}

func TestHandleListDocuments(t *testing.T) {
	server, _, _, _, library, _ := newTestServer(t)
	library.documents = []domain.Document{
		{
			ID:         "doc-1",
			Title:      "First",
			SourceKind: domain.SourceFile,
			SourceRef:  "/tmp/first.txt",
			ChunkIDs:   []string{"doc-1:0"},
			CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Summaries:  domain.Summaries{Standard: "summary"},
		},
	}

	_, output, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	require.Equal(t, 1, output.Count)
	doc := output.Documents[0]
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "file", doc.SourceKind)
	assert.Equal(t, 1, doc.ChunkCount)
	assert.True(t, doc.HasSummary)
	assert.Equal(t, "2026-03-01T10:00:00Z", doc.CreatedAt)
}

func TestHandleDeleteDocument(t *testing.T) {
	server, _, _, _, library, _ := newTestServer(t)
	library.deleted = true

	_, output, err := server.handleDeleteDocument(context.Background(), nil, DeleteDocumentInput{
		DocumentID: "doc-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", library.lastID)
	assert.True(t, output.Deleted)
}

func TestHandleClearAll_RequiresConfirm(t *testing.T) {
	server, _, _, _, library, _ := newTestServer(t)

	_, _, err := server.handleClearAll(context.Background(), nil, ClearAllInput{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, library.cleared)
}

func TestHandleClearAll_Confirmed(t *testing.T) {
	server, _, _, _, library, _ := newTestServer(t)

	_, output, err := server.handleClearAll(context.Background(), nil, ClearAllInput{Confirm: true})

	require.NoError(t, err)
	assert.True(t, output.Cleared)
	assert.True(t, library.cleared)
}

func TestHandleGetStatus(t *testing.T) {
	server, _, _, _, _, status := newTestServer(t)
	status.status = domain.StoreStatus{
		DocumentCount: 2,
		ChunkCount:    9,
		EmbeddingDim:  768,
		StorageBytes:  4096,
		Backend:       "snapshot",
		Documents: []domain.DocumentInfo{
			{ID: "doc-1", Title: "First", SourceKind: domain.SourceText, ChunkCount: 4, HasSummary: true},
			{ID: "doc-2", Title: "Second", SourceKind: domain.SourceURL, ChunkCount: 5},
		},
	}

	_, output, err := server.handleGetStatus(context.Background(), nil, GetStatusInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.DocumentCount)
	assert.Equal(t, 9, output.ChunkCount)
	assert.Equal(t, 768, output.EmbeddingDim)
	assert.Equal(t, int64(4096), output.StorageBytes)
	assert.Equal(t, "snapshot", output.Backend)
	require.Len(t, output.Documents, 2)
	assert.Equal(t, "url", output.Documents[1].SourceKind)
}

func TestHandleTool_PropagatesError(t *testing.T) {
	server, ingest, _, _, _, _ := newTestServer(t)
	ingest.err = domain.NewIngestionError("/tmp/x.txt", domain.ErrEmbeddingFailed)

	_, _, err := server.handleProcessDocument(context.Background(), nil, ProcessDocumentInput{
		Path: "/tmp/x.txt",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

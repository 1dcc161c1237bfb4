package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// ProcessDocumentInput is the input schema for the process_document tool.
type ProcessDocumentInput struct {
	Path         string `json:"path" jsonschema:"path of the local file to ingest"`
	SummaryLevel string `json:"summary_level,omitempty" jsonschema:"summary depth: quick, standard, or detailed (default standard)"`
}

// ProcessTextInput is the input schema for the process_text tool.
type ProcessTextInput struct {
	Text         string `json:"text" jsonschema:"the raw text to ingest"`
	Title        string `json:"title,omitempty" jsonschema:"title to store the text under"`
	SummaryLevel string `json:"summary_level,omitempty" jsonschema:"summary depth: quick, standard, or detailed (default standard)"`
}

// ProcessUploadInput is the input schema for the process_uploaded_document tool.
type ProcessUploadInput struct {
	Content      string `json:"content" jsonschema:"text content extracted from the uploaded file"`
	Filename     string `json:"filename" jsonschema:"original filename of the upload"`
	SummaryLevel string `json:"summary_level,omitempty" jsonschema:"summary depth: quick, standard, or detailed (default standard)"`
}

// ProcessURLInput is the input schema for the process_url tool.
type ProcessURLInput struct {
	URL          string `json:"url" jsonschema:"the URL to fetch and ingest"`
	SummaryLevel string `json:"summary_level,omitempty" jsonschema:"summary depth: quick, standard, or detailed (default standard)"`
}

// ProcessBatchInput is the input schema for the process_batch tool.
type ProcessBatchInput struct {
	Paths        []string `json:"paths" jsonschema:"source references to ingest (file paths, URLs, github:// or gdrive:// refs)"`
	SummaryLevel string   `json:"summary_level,omitempty" jsonschema:"summary depth: quick, standard, or detailed (default standard)"`
}

// IngestOutput is the output schema for the single-document ingestion tools.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
	Summary    string `json:"summary,omitempty"`
}

// BatchItemOutput reports the outcome for one source in a batch.
type BatchItemOutput struct {
	Ref        string `json:"ref"`
	DocumentID string `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchOutput is the output schema for the process_batch tool.
type BatchOutput struct {
	Items          []BatchItemOutput `json:"items"`
	Succeeded      int               `json:"succeeded"`
	Failed         int               `json:"failed"`
	UnifiedSummary string            `json:"unified_summary,omitempty"`
}

// AskQuestionInput is the input schema for the ask_question tool.
type AskQuestionInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the stored documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to retrieve (default 5)"`
}

// AskQuestionOutput is the output schema for the ask_question tool.
type AskQuestionOutput struct {
	Answer           string   `json:"answer"`
	CitedDocumentIDs []string `json:"cited_document_ids,omitempty"`
	NoContext        bool     `json:"no_context"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string  `json:"query" jsonschema:"the search query"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	MinScore *float64 `json:"min_score,omitempty" jsonschema:"minimum cosine similarity score (default 0.25; 0 or negative disables the threshold)"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// DocumentOutput is the per-document shape shared by listing tools.
type DocumentOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SourceKind string `json:"source_kind"`
	SourceRef  string `json:"source_ref,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
	HasSummary bool   `json:"has_summary"`
}

// ListDocumentsInput is the (empty) input schema for list_documents.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

// ClearAllInput is the input schema for the clear_all_documents tool.
type ClearAllInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true to clear the store"`
}

// ClearAllOutput is the output schema for the clear_all_documents tool.
type ClearAllOutput struct {
	Cleared bool `json:"cleared"`
}

// GetStatusInput is the (empty) input schema for get_status.
type GetStatusInput struct{}

// GetStatusOutput is the output schema for the get_status tool.
type GetStatusOutput struct {
	DocumentCount int              `json:"document_count"`
	ChunkCount    int              `json:"chunk_count"`
	EmbeddingDim  int              `json:"embedding_dim"`
	StorageBytes  int64            `json:"storage_bytes"`
	Backend       string           `json:"backend"`
	Documents     []DocumentOutput `json:"documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Ingest a local file into the knowledge store",
	}, s.handleProcessDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_text",
		Description: "Ingest raw text into the knowledge store",
	}, s.handleProcessText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_uploaded_document",
		Description: "Ingest the extracted text of an uploaded file into the knowledge store",
	}, s.handleProcessUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_url",
		Description: "Fetch a URL and ingest its content into the knowledge store",
	}, s.handleProcessURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_batch",
		Description: "Ingest multiple sources and produce a unified summary",
	}, s.handleProcessBatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question from the stored documents with citations",
	}, s.handleAskQuestion)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search stored chunks by semantic similarity without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all documents in the knowledge store",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and its chunks by id",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_all_documents",
		Description: "Remove all documents and chunks from the knowledge store",
	}, s.handleClearAll)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_status",
		Description: "Report document and chunk counts, embedding dimension, and storage footprint",
	}, s.handleGetStatus)
}

// handleProcessDocument handles the process_document tool invocation.
func (s *Server) handleProcessDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessDocumentInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	return s.ingestSource(ctx, input.Path, input.SummaryLevel)
}

// handleProcessURL handles the process_url tool invocation.
func (s *Server) handleProcessURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessURLInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	return s.ingestSource(ctx, input.URL, input.SummaryLevel)
}

func (s *Server) ingestSource(
	ctx context.Context,
	ref, summaryLevel string,
) (*mcp.CallToolResult, IngestOutput, error) {
	level, err := domain.ParseSummaryLevel(summaryLevel)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	doc, err := s.ports.Ingest.IngestSource(ctx, ref, driving.IngestOptions{
		SummaryLevel: level,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, ingestOutput(doc, level), nil
}

// handleProcessText handles the process_text tool invocation.
func (s *Server) handleProcessText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessTextInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	level, err := domain.ParseSummaryLevel(input.SummaryLevel)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	doc, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		Title:        input.Title,
		Text:         input.Text,
		Kind:         domain.SourceText,
		SummaryLevel: level,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, ingestOutput(doc, level), nil
}

// handleProcessUpload handles the process_uploaded_document tool
// invocation. The caller has already extracted the upload's text; the
// title falls back to the filename without its extension.
func (s *Server) handleProcessUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessUploadInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if input.Filename == "" {
		return nil, IngestOutput{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}

	level, err := domain.ParseSummaryLevel(input.SummaryLevel)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	doc, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		Title:        uploadTitle(input.Filename),
		Text:         input.Content,
		Kind:         domain.SourceUpload,
		SourceRef:    input.Filename,
		SummaryLevel: level,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, ingestOutput(doc, level), nil
}

// uploadTitle derives a title from an uploaded filename: the base
// name without its extension.
func uploadTitle(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// handleProcessBatch handles the process_batch tool invocation.
func (s *Server) handleProcessBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessBatchInput,
) (*mcp.CallToolResult, BatchOutput, error) {
	if len(input.Paths) == 0 {
		return nil, BatchOutput{}, fmt.Errorf("%w: no sources given", domain.ErrInvalidInput)
	}

	level, err := domain.ParseSummaryLevel(input.SummaryLevel)
	if err != nil {
		return nil, BatchOutput{}, err
	}

	result, err := s.ports.Ingest.IngestBatch(ctx, input.Paths, driving.IngestOptions{
		SummaryLevel: level,
	})
	if err != nil {
		return nil, BatchOutput{}, err
	}

	output := BatchOutput{
		Items:          make([]BatchItemOutput, len(result.Items)),
		Succeeded:      result.Succeeded(),
		Failed:         result.Failed(),
		UnifiedSummary: result.UnifiedSummary,
	}
	for i, item := range result.Items {
		output.Items[i] = BatchItemOutput{
			Ref:        item.Ref,
			DocumentID: item.DocumentID,
			Title:      item.Title,
		}
		if item.Err != nil {
			output.Items[i].Error = item.Err.Error()
		}
	}

	return nil, output, nil
}

// handleAskQuestion handles the ask_question tool invocation.
func (s *Server) handleAskQuestion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskQuestionInput,
) (*mcp.CallToolResult, AskQuestionOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question, domain.AskOptions{
		TopK: input.TopK,
	})
	if err != nil {
		return nil, AskQuestionOutput{}, err
	}

	return nil, AskQuestionOutput{
		Answer:           answer.Text,
		CitedDocumentIDs: answer.CitedDocumentIDs,
		NoContext:        answer.NoContext,
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}
	minScore := domain.DefaultMinScore
	if input.MinScore != nil {
		minScore = *input.MinScore
	}

	results, err := s.ports.Search.Search(ctx, input.Query, limit, minScore)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].Chunk.ID,
			DocumentID: results[i].Chunk.DocumentID,
			Position:   results[i].Chunk.Position,
			Score:      results[i].Score,
			Text:       results[i].Chunk.Text,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(docs[i])
	}

	return nil, output, nil
}

// handleDeleteDocument handles the delete_document tool invocation.
func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	deleted, err := s.ports.Library.Delete(ctx, input.DocumentID)
	if err != nil {
		return nil, DeleteDocumentOutput{}, err
	}

	return nil, DeleteDocumentOutput{Deleted: deleted}, nil
}

// handleClearAll handles the clear_all_documents tool invocation.
// The confirm flag guards against accidental destructive calls.
func (s *Server) handleClearAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearAllInput,
) (*mcp.CallToolResult, ClearAllOutput, error) {
	if !input.Confirm {
		return nil, ClearAllOutput{}, fmt.Errorf(
			"%w: set confirm to true to clear all documents", domain.ErrInvalidInput)
	}

	if err := s.ports.Library.Clear(ctx); err != nil {
		return nil, ClearAllOutput{}, err
	}

	return nil, ClearAllOutput{Cleared: true}, nil
}

// handleGetStatus handles the get_status tool invocation.
func (s *Server) handleGetStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetStatusInput,
) (*mcp.CallToolResult, GetStatusOutput, error) {
	status, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	output := GetStatusOutput{
		DocumentCount: status.DocumentCount,
		ChunkCount:    status.ChunkCount,
		EmbeddingDim:  status.EmbeddingDim,
		StorageBytes:  status.StorageBytes,
		Backend:       status.Backend,
		Documents:     make([]DocumentOutput, len(status.Documents)),
	}
	for i, info := range status.Documents {
		output.Documents[i] = DocumentOutput{
			ID:         info.ID,
			Title:      info.Title,
			SourceKind: info.SourceKind.String(),
			ChunkCount: info.ChunkCount,
			CreatedAt:  info.CreatedAt.Format(time.RFC3339),
			HasSummary: info.HasSummary,
		}
	}

	return nil, output, nil
}

func ingestOutput(doc domain.Document, level domain.SummaryLevel) IngestOutput {
	return IngestOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		ChunkCount: len(doc.ChunkIDs),
		Summary:    doc.Summaries.Get(level),
	}
}

func documentOutput(doc domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Title:      doc.Title,
		SourceKind: doc.SourceKind.String(),
		SourceRef:  doc.SourceRef,
		ChunkCount: len(doc.ChunkIDs),
		CreatedAt:  doc.CreatedAt.Format(time.RFC3339),
		HasSummary: doc.Summaries.HasAny(),
	}
}

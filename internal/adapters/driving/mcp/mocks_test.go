package mcp

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// mockIngestor is a mock implementation of driving.Ingestor.
type mockIngestor struct {
	doc     domain.Document
	batch   domain.BatchResult
	err     error
	lastReq driving.IngestRequest
	lastRef string
	refs    []string
}

func (m *mockIngestor) Ingest(_ context.Context, req driving.IngestRequest) (domain.Document, error) {
	m.lastReq = req
	return m.doc, m.err
}

func (m *mockIngestor) IngestSource(_ context.Context, ref string, _ driving.IngestOptions) (domain.Document, error) {
	m.lastRef = ref
	return m.doc, m.err
}

func (m *mockIngestor) IngestBatch(_ context.Context, refs []string, _ driving.IngestOptions) (domain.BatchResult, error) {
	m.refs = refs
	return m.batch, m.err
}

// mockAnswerer is a mock implementation of driving.Answerer.
type mockAnswerer struct {
	answer       domain.Answer
	err          error
	lastQuestion string
	lastOpts     domain.AskOptions
}

func (m *mockAnswerer) Answer(_ context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.answer, m.err
}

// mockSearcher is a mock implementation of driving.Searcher.
type mockSearcher struct {
	results      []domain.ScoredChunk
	err          error
	lastQuery    string
	lastK        int
	lastMinScore float64
}

func (m *mockSearcher) Search(_ context.Context, query string, k int, minScore float64) ([]domain.ScoredChunk, error) {
	m.lastQuery = query
	m.lastK = k
	m.lastMinScore = minScore
	return m.results, m.err
}

// mockLibrarian is a mock implementation of driving.Librarian.
type mockLibrarian struct {
	documents []domain.Document
	document  domain.Document
	content   string
	deleted   bool
	err       error
	cleared   bool
	lastID    string
}

func (m *mockLibrarian) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibrarian) Get(_ context.Context, documentID string) (domain.Document, error) {
	m.lastID = documentID
	return m.document, m.err
}

func (m *mockLibrarian) GetContent(_ context.Context, documentID string) (string, error) {
	m.lastID = documentID
	return m.content, m.err
}

func (m *mockLibrarian) Delete(_ context.Context, documentID string) (bool, error) {
	m.lastID = documentID
	return m.deleted, m.err
}

func (m *mockLibrarian) Clear(_ context.Context) error {
	if m.err == nil {
		m.cleared = true
	}
	return m.err
}

// mockStatusReporter is a mock implementation of driving.StatusReporter.
type mockStatusReporter struct {
	status domain.StoreStatus
	err    error
}

func (m *mockStatusReporter) Status(_ context.Context) (domain.StoreStatus, error) {
	return m.status, m.err
}

// fullPorts returns a Ports value with every port mocked.
func fullPorts() (*Ports, *mockIngestor, *mockAnswerer, *mockSearcher, *mockLibrarian, *mockStatusReporter) {
	ingest := &mockIngestor{}
	answer := &mockAnswerer{}
	search := &mockSearcher{}
	library := &mockLibrarian{}
	status := &mockStatusReporter{}

	return &Ports{
		Ingest:  ingest,
		Answer:  answer,
		Search:  search,
		Library: library,
		Status:  status,
	}, ingest, answer, search, library, status
}

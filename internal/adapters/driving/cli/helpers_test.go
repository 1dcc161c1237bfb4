package cli

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
)

// stubIngestor implements driving.Ingestor for command tests.
type stubIngestor struct {
	doc   domain.Document
	batch domain.BatchResult
	err   error
}

func (s *stubIngestor) Ingest(_ context.Context, _ driving.IngestRequest) (domain.Document, error) {
	return s.doc, s.err
}

func (s *stubIngestor) IngestSource(_ context.Context, _ string, _ driving.IngestOptions) (domain.Document, error) {
	return s.doc, s.err
}

func (s *stubIngestor) IngestBatch(_ context.Context, _ []string, _ driving.IngestOptions) (domain.BatchResult, error) {
	return s.batch, s.err
}

// stubAnswerer implements driving.Answerer.
type stubAnswerer struct {
	answer   domain.Answer
	err      error
	lastOpts domain.AskOptions
}

func (s *stubAnswerer) Answer(_ context.Context, _ string, opts domain.AskOptions) (domain.Answer, error) {
	s.lastOpts = opts
	return s.answer, s.err
}

// stubSearcher implements driving.Searcher.
type stubSearcher struct {
	results []domain.ScoredChunk
	err     error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int, _ float64) ([]domain.ScoredChunk, error) {
	return s.results, s.err
}

// stubLibrarian implements driving.Librarian.
type stubLibrarian struct {
	documents []domain.Document
	document  domain.Document
	content   string
	deleted   bool
	err       error
}

func (s *stubLibrarian) List(_ context.Context) ([]domain.Document, error) {
	return s.documents, s.err
}

func (s *stubLibrarian) Get(_ context.Context, _ string) (domain.Document, error) {
	return s.document, s.err
}

func (s *stubLibrarian) GetContent(_ context.Context, _ string) (string, error) {
	return s.content, s.err
}

func (s *stubLibrarian) Delete(_ context.Context, _ string) (bool, error) {
	return s.deleted, s.err
}

func (s *stubLibrarian) Clear(_ context.Context) error {
	return s.err
}

// stubStatusReporter implements driving.StatusReporter.
type stubStatusReporter struct {
	status domain.StoreStatus
	err    error
}

func (s *stubStatusReporter) Status(_ context.Context) (domain.StoreStatus, error) {
	return s.status, s.err
}

// testServices bundles the stubs installed by setupTestServices.
type testServices struct {
	ingest  *stubIngestor
	answer  *stubAnswerer
	search  *stubSearcher
	library *stubLibrarian
	status  *stubStatusReporter
}

// setupTestServices installs stub services into the package-level
// service variables so commands skip real wiring. The returned cleanup
// restores the previous state.
func setupTestServices() (*testServices, func()) {
	oldIngest := ingestService
	oldAnswer := answerService
	oldSearch := searchService
	oldLibrary := libraryService
	oldStatus := statusService

	stubs := &testServices{
		ingest:  &stubIngestor{},
		answer:  &stubAnswerer{},
		search:  &stubSearcher{},
		library: &stubLibrarian{},
		status:  &stubStatusReporter{},
	}

	ingestService = stubs.ingest
	answerService = stubs.answer
	searchService = stubs.search
	libraryService = stubs.library
	statusService = stubs.status

	return stubs, func() {
		ingestService = oldIngest
		answerService = oldAnswer
		searchService = oldSearch
		libraryService = oldLibrary
		statusService = oldStatus
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/korpus-labs/korpus-cli/internal/chunker"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// minDocumentRunes is the shortest text accepted for ingestion.
const minDocumentRunes = 10

// rollbackTimeout bounds the cleanup of a partially ingested document.
const rollbackTimeout = 10 * time.Second

// IngestService runs the ingestion pipeline: register, chunk, embed,
// store, summarise. One document is all-or-nothing; a failure at any
// step removes the partially ingested document before the error is
// returned.
type IngestService struct {
	store     driven.KnowledgeStore
	embedder  driven.EmbeddingProvider
	summaries *SummaryService
	resolver  driven.ContentResolver
	chunker   *chunker.Chunker
	sleep     sleepFunc
}

// NewIngestService creates the ingestion pipeline. The resolver may be
// nil when source-based ingestion is not wired; Ingest itself then
// still handles raw text.
func NewIngestService(
	store driven.KnowledgeStore,
	embedder driven.EmbeddingProvider,
	summaries *SummaryService,
	resolver driven.ContentResolver,
	ch *chunker.Chunker,
) *IngestService {
	return &IngestService{
		store:     store,
		embedder:  embedder,
		summaries: summaries,
		resolver:  resolver,
		chunker:   ch,
		sleep:     sleepWithContext,
	}
}

// Ingest processes one document from raw text.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (domain.Document, error) {
	text := strings.TrimSpace(req.Text)
	if len([]rune(text)) < minDocumentRunes {
		return domain.Document{}, fmt.Errorf("%w: document text too short to ingest", domain.ErrInvalidInput)
	}

	level, err := domain.ParseSummaryLevel(string(req.SummaryLevel))
	if err != nil {
		return domain.Document{}, err
	}

	docID := req.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Document"
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.SourceText
	}

	logger.Section("Document Ingestion")
	logger.Debug("Document %s (%q), %d chars, level %s", docID, title, len(text), level)

	// 1. Register the document in Pending state.
	doc := domain.Document{
		ID:         docID,
		Title:      title,
		SourceKind: kind,
		SourceRef:  req.SourceRef,
	}
	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("registering document: %w", err)
	}

	// From here on any failure rolls the registration back.
	final, err := s.index(ctx, docID, text, level)
	if err != nil {
		s.rollback(docID)
		return domain.Document{}, err
	}

	logger.Info("Ingested %q as %s (%d chunks)", title, docID, len(final.ChunkIDs))
	return final, nil
}

// index runs steps 2-5 of the pipeline: chunk, embed, store chunks,
// summarise.
func (s *IngestService) index(ctx context.Context, docID, text string, level domain.SummaryLevel) (domain.Document, error) {
	// 2. Chunk.
	segments := s.chunker.Chunk(text)
	if len(segments) == 0 {
		return domain.Document{}, fmt.Errorf("%w: no chunks produced", domain.ErrInvalidInput)
	}
	logger.Debug("Split into %d chunks", len(segments))

	// 3. Embed all chunks in one batch.
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	var embeddings [][]float32
	err := withRetry(ctx, s.sleep, "chunk embedding", func(ctx context.Context) error {
		var embedErr error
		embeddings, embedErr = s.embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(embeddings) != len(segments) {
		return domain.Document{}, fmt.Errorf("%w: %d embeddings returned for %d chunks",
			domain.ErrEmbeddingFailed, len(embeddings), len(segments))
	}

	// 4. Store chunks; the store enforces the dimension invariant and
	// flips the document to Indexed.
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(docID, seg.Position),
			DocumentID: docID,
			Position:   seg.Position,
			Text:       seg.Text,
			Embedding:  embeddings[i],
		}
	}
	if err := s.store.InsertChunks(ctx, docID, chunks); err != nil {
		return domain.Document{}, fmt.Errorf("storing chunks: %w", err)
	}

	// 5. Summarise and attach.
	summary, err := s.summaries.Summarise(ctx, text, level)
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.store.AttachSummary(ctx, docID, level, summary); err != nil {
		return domain.Document{}, fmt.Errorf("attaching summary: %w", err)
	}

	final, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("loading ingested document: %w", err)
	}
	return final, nil
}

// rollback removes a partially ingested document. It runs on a fresh
// context so a cancelled ingest still cleans up.
func (s *IngestService) rollback(docID string) {
	ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
	defer cancel()
	if _, err := s.store.DeleteDocument(ctx, docID); err != nil {
		logger.Warn("Rollback of document %s failed: %v", docID, err)
	}
}

// IngestSource resolves a content provider for the reference, fetches
// text, and ingests it. Failures are attributed to the ref.
func (s *IngestService) IngestSource(ctx context.Context, ref string, opts driving.IngestOptions) (domain.Document, error) {
	if s.resolver == nil {
		return domain.Document{}, domain.NewIngestionError(ref, domain.ErrUnsupportedSource)
	}

	provider, err := s.resolver.Resolve(ref)
	if err != nil {
		return domain.Document{}, domain.NewIngestionError(ref, err)
	}

	content, err := provider.Fetch(ctx, ref)
	if err != nil {
		return domain.Document{}, domain.NewIngestionError(ref, err)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = content.Title
	}

	sourceRef := content.Ref
	if sourceRef == "" {
		sourceRef = ref
	}

	doc, err := s.Ingest(ctx, driving.IngestRequest{
		Title:        title,
		Text:         content.Text,
		Kind:         content.Kind,
		SourceRef:    sourceRef,
		SummaryLevel: opts.SummaryLevel,
	})
	if err != nil {
		return domain.Document{}, domain.NewIngestionError(ref, err)
	}
	return doc, nil
}

// IngestBatch ingests each source independently: one failing source is
// recorded and the batch moves on. When at least one source succeeds,
// a unified summary is synthesized from the successes' standard
// summaries; a failure there is reported on the result, not as a batch
// error.
func (s *IngestService) IngestBatch(ctx context.Context, refs []string, opts driving.IngestOptions) (domain.BatchResult, error) {
	var result domain.BatchResult
	if len(refs) == 0 {
		return result, fmt.Errorf("%w: no sources to ingest", domain.ErrInvalidInput)
	}

	level, err := domain.ParseSummaryLevel(string(opts.SummaryLevel))
	if err != nil {
		return result, err
	}

	logger.Section("Batch Ingestion")
	logger.Info("Ingesting %d sources", len(refs))

	var contributions []DocumentSummary
	for _, ref := range refs {
		item := domain.BatchItemResult{Ref: ref}

		doc, err := s.IngestSource(ctx, ref, opts)
		if err != nil {
			item.Err = err
			result.Items = append(result.Items, item)
			logger.Warn("Batch item %s failed: %v", ref, err)
			continue
		}

		item.DocumentID = doc.ID
		item.Title = doc.Title
		result.Items = append(result.Items, item)

		if summary, ok := s.standardSummary(ctx, doc); ok {
			contributions = append(contributions, DocumentSummary{
				Title:     doc.Title,
				Summary:   summary,
				CreatedAt: doc.CreatedAt,
			})
		}
	}

	if len(contributions) > 0 {
		unified, err := s.summaries.UnifiedSummary(ctx, contributions, level)
		if err != nil {
			result.UnifiedSummaryErr = err
			logger.Warn("Unified summary failed: %v", err)
		} else {
			result.UnifiedSummary = unified
		}
	}

	logger.Info("Batch done: %d succeeded, %d failed", result.Succeeded(), result.Failed())
	return result, nil
}

// standardSummary returns the document's standard summary, generating
// and attaching it when the batch ran at another level. The unified
// summary is always built from standard summaries.
func (s *IngestService) standardSummary(ctx context.Context, doc domain.Document) (string, bool) {
	if doc.Summaries.Standard != "" {
		return doc.Summaries.Standard, true
	}

	text, err := s.documentText(ctx, doc.ID)
	if err != nil {
		logger.Warn("Reconstructing %s for its standard summary failed: %v", doc.ID, err)
		return "", false
	}

	summary, err := s.summaries.Summarise(ctx, text, domain.SummaryStandard)
	if err != nil {
		logger.Warn("Standard summary for %s failed: %v", doc.ID, err)
		return "", false
	}
	if err := s.store.AttachSummary(ctx, doc.ID, domain.SummaryStandard, summary); err != nil {
		logger.Warn("Attaching standard summary to %s failed: %v", doc.ID, err)
	}
	return summary, true
}

// documentText rebuilds a document's text from its stored chunks with
// the overlap trimmed.
func (s *IngestService) documentText(ctx context.Context, docID string) (string, error) {
	chunks, err := s.store.GetChunks(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("loading chunks: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return chunker.Reassemble(texts, s.chunker.Overlap()), nil
}

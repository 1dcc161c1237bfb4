package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.Answerer = (*QAService)(nil)

// minQuestionRunes is the shortest question accepted.
const minQuestionRunes = 3

const qaSystemPrompt = `You are a helpful AI assistant that answers questions based on provided context.

Instructions:
1. ALWAYS try to find the answer in the provided context first
2. If the information exists in the context, provide it directly and confidently
3. Extract specific facts, dates, numbers, and details from the context
4. Be direct and specific - don't say "the context doesn't specify" if the information is there
5. Only say information is not available if it truly cannot be found in the context`

// QAService answers questions over the knowledge store: retrieve the
// most similar chunks, assemble a token-bounded context, and have the
// generation capability answer from it.
type QAService struct {
	store     driven.KnowledgeStore
	retriever *RetrievalService
	generator driven.TextGenerationProvider
	sleep     sleepFunc
}

// NewQAService creates a question-answering service.
func NewQAService(store driven.KnowledgeStore, retriever *RetrievalService, generator driven.TextGenerationProvider) *QAService {
	return &QAService{
		store:     store,
		retriever: retriever,
		generator: generator,
		sleep:     sleepWithContext,
	}
}

// Answer responds to a question with citations of the documents whose
// chunks fed the context. An empty store or an empty retrieval result
// short-circuits with a fixed message and no generation call.
func (s *QAService) Answer(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if len([]rune(question)) < minQuestionRunes {
		return domain.Answer{}, fmt.Errorf("%w: question too short", domain.ErrInvalidInput)
	}
	opts = opts.Normalise()

	logger.Section("Question Answering")
	logger.Debug("Question: %s", question)

	// 1. Nothing ingested yet: answer without touching the embedder.
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("checking store: %w", err)
	}
	if stats.ChunkCount == 0 {
		return domain.Answer{Text: domain.NoDocumentsMessage, NoContext: true}, nil
	}

	// 2. Retrieve.
	hits, err := s.retriever.Search(ctx, question, opts.TopK, *opts.MinScore)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(hits) == 0 {
		return domain.Answer{Text: domain.NoRelevantContextMessage, NoContext: true}, nil
	}

	// 3. Assemble a bounded context from whole chunks.
	contextText, citations := s.assembleContext(ctx, hits, opts.MaxContextTokens)
	logger.Debug("Context: %d chunks considered, %d documents cited, %d chars",
		len(hits), len(citations), len(contextText))

	// 4. Generate.
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nPlease answer the question based on the context provided above.",
		contextText, question)

	var text string
	err = withRetry(ctx, s.sleep, "answer generation", func(ctx context.Context) error {
		var genErr error
		text, genErr = s.generator.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:    domain.DefaultAnswerTokens,
			Temperature:  domain.DefaultTemperature,
			SystemPrompt: qaSystemPrompt,
		})
		return genErr
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	return domain.Answer{
		Text:             strings.TrimSpace(text),
		CitedDocumentIDs: citations,
	}, nil
}

// assembleContext joins retrieved chunks, best first, into one context
// block. Chunks are never split: once the next whole chunk would push
// past the budget, assembly stops. The top chunk is always included.
// Citations list the distinct source documents in inclusion order.
func (s *QAService) assembleContext(ctx context.Context, hits []domain.ScoredChunk, maxTokens int) (string, []string) {
	titles := make(map[string]string)
	seen := make(map[string]bool)

	var parts []string
	var citations []string
	used := 0

	for i, hit := range hits {
		title, ok := titles[hit.Chunk.DocumentID]
		if !ok {
			title = s.documentTitle(ctx, hit.Chunk.DocumentID)
			titles[hit.Chunk.DocumentID] = title
		}

		part := "Document: " + title + "\n" + hit.Chunk.Text
		cost := estimateTokens(part)
		if i > 0 && used+cost > maxTokens {
			break
		}
		used += cost
		parts = append(parts, part)

		if !seen[hit.Chunk.DocumentID] {
			seen[hit.Chunk.DocumentID] = true
			citations = append(citations, hit.Chunk.DocumentID)
		}
	}

	return strings.Join(parts, "\n\n---\n\n"), citations
}

// documentTitle resolves a document's title, falling back to its ID
// when the document vanished between retrieval and assembly.
func (s *QAService) documentTitle(ctx context.Context, docID string) string {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return docID
	}
	return doc.Title
}

// estimateTokens approximates the token cost of a string at four
// characters per token, rounding up.
func estimateTokens(text string) int {
	return (len([]rune(text)) + 3) / 4
}

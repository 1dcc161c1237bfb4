package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driving"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Searcher = (*RetrievalService)(nil)

// RetrievalService ranks stored chunks against a query embedding by
// cosine similarity. The scan is exhaustive over all stored chunks;
// at this corpus scale an index would cost more than it saves.
type RetrievalService struct {
	store    driven.KnowledgeStore
	embedder driven.EmbeddingProvider
	sleep    sleepFunc
}

// NewRetrievalService creates a retrieval service over the store and
// embedding provider.
func NewRetrievalService(store driven.KnowledgeStore, embedder driven.EmbeddingProvider) *RetrievalService {
	return &RetrievalService{
		store:    store,
		embedder: embedder,
		sleep:    sleepWithContext,
	}
}

// Retrieve returns the top k chunks for a query embedding, descending
// by score. Chunks scoring below minScore are discarded; ties keep the
// store's insertion order, so results are deterministic for a fixed
// store state.
func (s *RetrievalService) Retrieve(ctx context.Context, queryEmbedding []float32, k int, minScore float64) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	chunks, err := s.store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		score := CosineSimilarity(queryEmbedding, c.Embedding)
		if score < minScore {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: score})
	}
	logger.Debug("Scored %d chunks, %d above threshold %.2f", len(chunks), len(scored), minScore)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Search embeds a text query and retrieves against it. An empty query
// returns no results without calling the embedding capability.
func (s *RetrievalService) Search(ctx context.Context, query string, k int, minScore float64) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ScoredChunk{}, nil
	}

	var embedding []float32
	err := withRetry(ctx, s.sleep, "query embedding", func(ctx context.Context) error {
		var embedErr error
		embedding, embedErr = s.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return s.Retrieve(ctx, embedding, k, minScore)
}

// CosineSimilarity computes the cosine of the angle between two
// vectors, in [-1, 1]. Mismatched lengths and zero-norm vectors score
// 0 rather than erroring, so one malformed chunk cannot fail a scan.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

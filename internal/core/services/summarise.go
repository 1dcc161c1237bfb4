package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// TooShortToSummarise is returned as the summary for inputs under the
// minimum meaningful length. Not an error: a tiny document is still
// ingested.
const TooShortToSummarise = "Text is too short to summarize meaningfully."

// minSummariseRunes is the shortest input worth a generation call.
const minSummariseRunes = 50

var summarySystemPrompts = map[domain.SummaryLevel]string{
	domain.SummaryQuick: "You are an expert summarizer. Create a quick, concise summary with 2-3 key bullet points. " +
		"Focus only on the most essential information. Keep it brief and actionable.",
	domain.SummaryStandard: "You are an expert summarizer. Create a balanced summary with 4-5 main topics. " +
		"Include key details and context while maintaining readability.",
	domain.SummaryDetailed: "You are an expert summarizer. Create a comprehensive analysis with detailed insights. " +
		"Organize information into sections with context, implications, and deeper analysis.",
}

var summaryUserPrompts = map[domain.SummaryLevel]string{
	domain.SummaryQuick:    "Provide a quick summary with 2-3 key bullet points of the most important information:",
	domain.SummaryStandard: "Provide a standard summary covering the main topics and key details:",
	domain.SummaryDetailed: "Provide a detailed, comprehensive summary with analysis, context, and implications:",
}

// SummaryService generates per-document and cross-document summaries
// through the text generation capability.
type SummaryService struct {
	generator driven.TextGenerationProvider
	sleep     sleepFunc
}

// NewSummaryService creates a summary service.
func NewSummaryService(generator driven.TextGenerationProvider) *SummaryService {
	return &SummaryService{
		generator: generator,
		sleep:     sleepWithContext,
	}
}

// Summarise produces a summary at the given level, prefixed with its
// level indicator. Inputs beyond the cap are truncated before the
// generation call; inputs under 50 runes skip the call entirely.
func (s *SummaryService) Summarise(ctx context.Context, text string, level domain.SummaryLevel) (string, error) {
	if _, ok := summaryUserPrompts[level]; !ok {
		level = domain.SummaryStandard
	}
	if len([]rune(strings.TrimSpace(text))) < minSummariseRunes {
		return TooShortToSummarise, nil
	}

	text = truncateRunes(text, domain.DefaultSummaryInputCap)
	prompt := summaryUserPrompts[level] + "\n\n" + text

	logger.Debug("Generating %s summary over %d chars", level, len(text))

	var out string
	err := withRetry(ctx, s.sleep, "summary generation", func(ctx context.Context) error {
		var genErr error
		out, genErr = s.generator.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:    level.MaxTokens(),
			Temperature:  domain.DefaultTemperature,
			SystemPrompt: summarySystemPrompts[level],
		})
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("generating %s summary: %w", level, err)
	}

	return fmt.Sprintf("[%s SUMMARY]\n\n%s", strings.ToUpper(string(level)), strings.TrimSpace(out)), nil
}

// DocumentSummary is one document's contribution to a unified batch
// summary.
type DocumentSummary struct {
	Title     string
	Summary   string
	CreatedAt time.Time
}

const unifiedSystemPrompt = "You are an expert summarizer. Synthesize the individual document summaries " +
	"into one cohesive overview. Identify shared themes and note where documents diverge."

const unifiedUserPrompt = "Provide a unified summary across the following document summaries:"

// UnifiedSummary synthesizes one cross-document summary from
// per-document summaries. When the concatenation would exceed the
// character budget, whole documents are dropped oldest-first, so the
// most recent ones always contribute. The generation call always
// happens: a batch of one tiny document still gets a real unified
// summary, not the too-short sentinel.
func (s *SummaryService) UnifiedSummary(ctx context.Context, docs []DocumentSummary, level domain.SummaryLevel) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no summaries to unify", domain.ErrInvalidInput)
	}
	if _, ok := summaryUserPrompts[level]; !ok {
		level = domain.SummaryStandard
	}

	input := truncateRunes(buildUnifiedInput(docs, domain.DefaultUnifiedBudget), domain.DefaultSummaryInputCap)
	prompt := unifiedUserPrompt + "\n\n" + input

	logger.Debug("Generating unified %s summary over %d documents", level, len(docs))

	var out string
	err := withRetry(ctx, s.sleep, "unified summary generation", func(ctx context.Context) error {
		var genErr error
		out, genErr = s.generator.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:    level.MaxTokens(),
			Temperature:  domain.DefaultTemperature,
			SystemPrompt: unifiedSystemPrompt,
		})
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("generating unified summary: %w", err)
	}

	return fmt.Sprintf("[%s SUMMARY]\n\n%s", strings.ToUpper(string(level)), strings.TrimSpace(out)), nil
}

// buildUnifiedInput selects document summaries newest-first into the
// budget, then renders the survivors in chronological order. The
// newest document is always included even if oversized; Summarise caps
// the final input anyway.
func buildUnifiedInput(docs []DocumentSummary, budget int) string {
	sorted := make([]DocumentSummary, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var chosen []DocumentSummary
	used := 0
	for _, d := range sorted {
		cost := len([]rune(renderSummaryEntry(d))) + 2
		if used+cost > budget && len(chosen) > 0 {
			break
		}
		chosen = append(chosen, d)
		used += cost
	}

	sort.SliceStable(chosen, func(i, j int) bool {
		return chosen[i].CreatedAt.Before(chosen[j].CreatedAt)
	})

	parts := make([]string, 0, len(chosen))
	for _, d := range chosen {
		parts = append(parts, renderSummaryEntry(d))
	}
	return strings.Join(parts, "\n\n")
}

func renderSummaryEntry(d DocumentSummary) string {
	return "Document: " + d.Title + "\n" + d.Summary
}

// truncateRunes caps text at n runes, appending an ellipsis when it
// was cut.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

package domain

import "fmt"

// SourceKind identifies where a document's text came from.
type SourceKind string

const (
	// SourceFile is a local file read from disk.
	SourceFile SourceKind = "file"

	// SourceText is raw text supplied directly by the caller.
	SourceText SourceKind = "text"

	// SourceURL is content fetched from a remote location.
	// GitHub and Drive sources also carry this kind, with the
	// scheme preserved in the document's SourceRef.
	SourceURL SourceKind = "url"

	// SourceUpload is content pushed by a client rather than
	// fetched by reference.
	SourceUpload SourceKind = "upload"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceFile, SourceText, SourceURL, SourceUpload:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// SummaryLevel selects the depth of a generated summary.
// Levels are prompt-shaping parameters passed to the generation
// capability, not different algorithms.
type SummaryLevel string

const (
	// SummaryQuick is a 2-3 sentence essence of the document.
	SummaryQuick SummaryLevel = "quick"

	// SummaryStandard is a one-paragraph overview with key points.
	SummaryStandard SummaryLevel = "standard"

	// SummaryDetailed is a thorough multi-paragraph digest.
	SummaryDetailed SummaryLevel = "detailed"
)

// Summary output budgets in tokens per level.
const (
	QuickSummaryTokens    = 300
	StandardSummaryTokens = 600
	DetailedSummaryTokens = 1200
)

// IsValid returns true if the summary level is recognised.
func (l SummaryLevel) IsValid() bool {
	switch l {
	case SummaryQuick, SummaryStandard, SummaryDetailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l SummaryLevel) String() string {
	return string(l)
}

// MaxTokens returns the output token budget for the level.
func (l SummaryLevel) MaxTokens() int {
	switch l {
	case SummaryQuick:
		return QuickSummaryTokens
	case SummaryDetailed:
		return DetailedSummaryTokens
	default:
		return StandardSummaryTokens
	}
}

// ParseSummaryLevel maps a string to a SummaryLevel, defaulting to
// standard for empty input.
func ParseSummaryLevel(s string) (SummaryLevel, error) {
	if s == "" {
		return SummaryStandard, nil
	}
	level := SummaryLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("%w: unknown summary level %q", ErrInvalidInput, s)
	}
	return level, nil
}

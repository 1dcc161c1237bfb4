// Package chunker splits normalized text into ordered, overlapping
// chunks for embedding and retrieval.
package chunker

import (
	"strings"
	"unicode"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// Segment is one chunk of text with its 0-based position.
type Segment struct {
	Position int
	Text     string
}

// Chunker splits text preferring paragraph boundaries, then sentence
// boundaries, falling back to a fixed-size window when no boundary
// exists past the overlap watermark. The last `overlap` runes of each
// chunk are duplicated at the start of the next to preserve
// cross-boundary context.
//
// Splitting is deterministic: identical input and configuration always
// produce identical output.
type Chunker struct {
	maxSize int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxSize sets the maximum chunk size in runes.
func WithMaxSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxSize: domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.maxSize {
		c.overlap = c.maxSize / 4
	}

	return c
}

// MaxSize returns the configured maximum chunk size in runes.
func (c *Chunker) MaxSize() int {
	return c.maxSize
}

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into ordered segments. Empty or whitespace-only
// input yields an empty sequence, not an error.
func (c *Chunker) Chunk(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)

	estimated := (total / (c.maxSize - c.overlap)) + 1
	segments := make([]Segment, 0, estimated)

	position := 0
	start := 0

	for start < total {
		end := start + c.maxSize
		if end >= total {
			segments = append(segments, Segment{Position: position, Text: string(runes[start:total])})
			break
		}

		// A cut must land past the overlap watermark so the next
		// chunk always advances.
		watermark := start + c.overlap

		cut := paragraphCut(runes, watermark, end)
		if cut == 0 {
			cut = sentenceCut(runes, watermark, end)
		}
		if cut == 0 {
			cut = end
		}

		segments = append(segments, Segment{Position: position, Text: string(runes[start:cut])})
		position++
		start = cut - c.overlap
	}

	return segments
}

// paragraphCut returns the rightmost index in (watermark, end] that
// sits just after a blank line, or 0 when none exists.
func paragraphCut(runes []rune, watermark, end int) int {
	for i := end; i > watermark; i-- {
		if i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	return 0
}

// sentenceCut returns the rightmost index in (watermark, end] that
// sits just after sentence-ending punctuation followed by whitespace,
// or 0 when none exists.
func sentenceCut(runes []rune, watermark, end int) int {
	for i := end; i > watermark; i-- {
		r := runes[i-1]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i == len(runes) || unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return 0
}

// Reassemble reconstructs the original text from chunk texts by
// trimming the duplicated overlap prefix from every chunk after the
// first. It is the inverse of Chunk for the configured overlap.
func Reassemble(texts []string, overlap int) string {
	if len(texts) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(texts[0])

	for _, text := range texts[1:] {
		runes := []rune(text)
		if overlap >= len(runes) {
			continue
		}
		builder.WriteString(string(runes[overlap:]))
	}

	return builder.String()
}

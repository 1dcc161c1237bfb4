// Package file provides a content provider for local plain-text files
// and an fsnotify-based directory watcher for automatic ingestion.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// DefaultMaxBytes caps how much of a file is read (5MB).
const DefaultMaxBytes = 5 * 1024 * 1024

// textExtensions are the file extensions treated as plain text.
// Binary formats (PDF, DOCX) need an external extraction step and are
// rejected here rather than ingested as garbage.
var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".rst":      true,
	".log":      true,
	".csv":      true,
	".json":     true,
	".yaml":     true,
	".yml":      true,
	".toml":     true,
	".xml":      true,
	".html":     true,
	".htm":      true,
}

// Config holds configuration for the file provider.
type Config struct {
	// MaxBytes caps the bytes read per file (default 5MB).
	MaxBytes int64
}

// Provider reads local files as document text.
type Provider struct {
	maxBytes int64
}

// NewProvider creates a local file content provider.
func NewProvider(cfg Config) *Provider {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &Provider{maxBytes: cfg.MaxBytes}
}

// Fetch reads the referenced file. The returned Ref is the absolute
// path, so files are identified consistently regardless of how they
// were referenced.
func (p *Provider) Fetch(ctx context.Context, ref string) (domain.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawContent{}, err
	}

	path, err := filepath.Abs(ref)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.RawContent{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if !IsTextFile(path) {
		return domain.RawContent{}, fmt.Errorf("%w: %s is not a supported text format", domain.ErrUnsupportedSource, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only handle

	data, err := io.ReadAll(io.LimitReader(f, p.maxBytes))
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return domain.RawContent{
		Title: TitleFromPath(path),
		Text:  string(data),
		Kind:  domain.SourceFile,
		Ref:   path,
	}, nil
}

// IsTextFile reports whether the path's extension is a supported
// plain-text format.
func IsTextFile(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// TitleFromPath derives a document title from a file path: the base
// name without its extension, underscores replaced by spaces.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return path
	}
	return name
}

package driven

import (
	"context"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// ContentProvider extracts plain text for a source reference.
// Providers are scheme-specific (file paths, http(s) URLs, github://
// refs, gdrive:// refs); a resolver picks the provider for a ref.
//
// Failures surface as *domain.IngestionError attributed to the ref.
type ContentProvider interface {
	// Fetch retrieves the title and plain text for the reference.
	Fetch(ctx context.Context, ref string) (domain.RawContent, error)
}

// ContentResolver routes a source reference to the provider that
// handles it.
type ContentResolver interface {
	// Resolve returns the provider for the reference, or
	// domain.ErrUnsupportedSource when none handles it.
	Resolve(ref string) (ContentProvider, error)
}

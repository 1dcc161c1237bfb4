package content

import (
	"fmt"
	"strings"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.ContentResolver = (*Resolver)(nil)

// Config holds the providers the resolver routes to. A nil provider
// makes its scheme unsupported rather than failing construction, so a
// partially configured installation still ingests what it can.
type Config struct {
	// File handles plain paths (everything without a known scheme).
	File driven.ContentProvider

	// Web handles http:// and https:// references.
	Web driven.ContentProvider

	// GitHub handles github://owner/repo[/path][@ref] references.
	GitHub driven.ContentProvider

	// GDrive handles gdrive://fileID references.
	GDrive driven.ContentProvider
}

// Resolver picks a content provider for a source reference by its
// scheme.
type Resolver struct {
	cfg Config
}

// NewResolver creates a scheme-based content resolver.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve returns the provider for the reference, or
// domain.ErrUnsupportedSource when no provider handles its scheme.
func (r *Resolver) Resolve(ref string) (driven.ContentProvider, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty source reference", domain.ErrInvalidInput)
	}

	var provider driven.ContentProvider
	var scheme string

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		provider, scheme = r.cfg.Web, "web"
	case strings.HasPrefix(ref, "github://"):
		provider, scheme = r.cfg.GitHub, "github"
	case strings.HasPrefix(ref, "gdrive://"):
		provider, scheme = r.cfg.GDrive, "gdrive"
	default:
		provider, scheme = r.cfg.File, "file"
	}

	if provider == nil {
		return nil, fmt.Errorf("%w: no %s provider configured for %q", domain.ErrUnsupportedSource, scheme, ref)
	}
	return provider, nil
}

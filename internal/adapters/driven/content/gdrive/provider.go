// Package gdrive provides a content provider for gdrive:// source
// references, backed by the Google Drive v3 API.
//
// Reference format: gdrive://fileID. Google Docs, Sheets, and Slides
// are exported to text; regular text files are downloaded directly.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// Google Workspace MIME types that can be exported.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// MaxExportSize caps downloaded/exported content (5MB).
const MaxExportSize = 5 * 1024 * 1024

// Config holds configuration for the Drive provider.
type Config struct {
	// AccessToken is the OAuth access token for the Drive API.
	AccessToken string
}

// Provider fetches files from Google Drive. The API service is built
// lazily on first use so construction never blocks.
type Provider struct {
	token string

	mu  sync.Mutex
	svc *drive.Service
}

// NewProvider creates a Google Drive content provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{token: cfg.AccessToken}
}

// service returns the cached Drive service, building it on first call.
func (p *Provider) service(ctx context.Context) (*drive.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.svc != nil {
		return p.svc, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.token})
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	p.svc = svc
	return svc, nil
}

// parseRef extracts the file id from gdrive://fileID.
func parseRef(raw string) (string, error) {
	const scheme = "gdrive://"
	if !strings.HasPrefix(raw, scheme) {
		return "", fmt.Errorf("%w: %q is not a gdrive:// reference", domain.ErrInvalidInput, raw)
	}
	id := strings.Trim(strings.TrimPrefix(raw, scheme), "/")
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %q must be gdrive://fileID", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

// Fetch retrieves the referenced Drive file as plain text.
func (p *Provider) Fetch(ctx context.Context, raw string) (domain.RawContent, error) {
	fileID, err := parseRef(raw)
	if err != nil {
		return domain.RawContent{}, err
	}

	svc, err := p.service(ctx)
	if err != nil {
		return domain.RawContent{}, err
	}

	file, err := svc.Files.Get(fileID).Fields("id", "name", "mimeType", "size").Context(ctx).Do()
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("fetching drive file %s: %w", fileID, err)
	}
	if file.MimeType == MimeTypeFolder {
		return domain.RawContent{}, fmt.Errorf("%w: %s is a folder", domain.ErrInvalidInput, fileID)
	}

	text, err := p.fetchContent(ctx, svc, file)
	if err != nil {
		return domain.RawContent{}, err
	}

	return domain.RawContent{
		Title: file.Name,
		Text:  text,
		Kind:  domain.SourceURL,
		Ref:   raw,
	}, nil
}

// fetchContent exports Workspace files to a text format and downloads
// everything else that looks like text.
func (p *Provider) fetchContent(ctx context.Context, svc *drive.Service, file *drive.File) (string, error) {
	switch file.MimeType {
	case MimeTypeGoogleDoc, MimeTypeGoogleSlides:
		return exportFile(ctx, svc, file.Id, ExportMimeText)
	case MimeTypeGoogleSheet:
		return exportFile(ctx, svc, file.Id, ExportMimeCSV)
	}

	if !isTextMime(file.MimeType) {
		return "", fmt.Errorf("%w: drive file %s has unsupported type %s", domain.ErrUnsupportedSource, file.Id, file.MimeType)
	}
	if file.Size > MaxExportSize {
		return "", fmt.Errorf("%w: drive file %s exceeds the %d byte limit", domain.ErrUnsupportedSource, file.Id, MaxExportSize)
	}

	resp, err := svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("downloading drive file %s: %w", file.Id, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	return readCapped(resp.Body)
}

// exportFile converts a Google Workspace file to the requested format.
func exportFile(ctx context.Context, svc *drive.Service, fileID, exportMime string) (string, error) {
	resp, err := svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("exporting drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	return readCapped(resp.Body)
}

func readCapped(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxExportSize))
	if err != nil {
		return "", fmt.Errorf("reading drive content: %w", err)
	}
	return string(data), nil
}

// isTextMime reports whether a Drive MIME type is ingestible as text.
func isTextMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		strings.Contains(mimeType, "json") ||
		strings.Contains(mimeType, "xml") ||
		mimeType == "application/rtf"
}

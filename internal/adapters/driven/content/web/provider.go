// Package web provides a content provider that fetches a URL and
// strips the HTML down to readable text.
package web

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 5 * 1024 * 1024
	userAgent       = "korpus/1.0"
)

// Config holds configuration for the web provider.
type Config struct {
	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// MaxBytes caps the bytes read per page (default 5MB).
	MaxBytes int64
}

// Provider fetches remote pages over HTTP.
type Provider struct {
	client   *http.Client
	maxBytes int64
}

// NewProvider creates a web content provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &Provider{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch downloads the page and reduces it to plain text. HTML pages
// are stripped of markup; other text content types pass through.
func (p *Provider) Fetch(ctx context.Context, ref string) (domain.RawContent, error) {
	parsed, err := url.Parse(ref)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return domain.RawContent{}, fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, http.NoBody)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("fetching %s: %w", ref, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.RawContent{}, fmt.Errorf("fetching %s: status %d", ref, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContentType(contentType) {
		return domain.RawContent{}, fmt.Errorf("%w: content type %q is not text", domain.ErrUnsupportedSource, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("reading %s: %w", ref, err)
	}

	raw := string(body)
	title := titleFromURL(parsed)
	text := raw
	if strings.Contains(contentType, "html") {
		if t := extractTitle(raw); t != "" {
			title = t
		}
		text = stripHTML(raw)
	}

	return domain.RawContent{
		Title: title,
		Text:  text,
		Kind:  domain.SourceURL,
		Ref:   ref,
	}, nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// extractTitle pulls the page title from the <title> tag, if present.
func extractTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(matches[1]))
}

// stripHTML converts an HTML page to plain text: non-content blocks
// removed, block boundaries turned into newlines, entities decoded,
// whitespace collapsed.
func stripHTML(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")

	content = brTags.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = allTags.ReplaceAllString(content, " ")

	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}

// titleFromURL falls back to host + path when a page has no title.
func titleFromURL(u *url.URL) string {
	title := u.Host + strings.TrimSuffix(u.Path, "/")
	if title == "" {
		return u.String()
	}
	return title
}

// isTextContentType reports whether the response body is worth
// ingesting as text.
func isTextContentType(contentType string) bool {
	if contentType == "" {
		// Assume text; the read cap bounds the damage.
		return true
	}
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "text/") ||
		strings.Contains(contentType, "html") ||
		strings.Contains(contentType, "xml") ||
		strings.Contains(contentType, "json")
}

// Package github provides a content provider for github:// source
// references, backed by the GitHub REST API.
//
// Reference format: github://owner/repo[/path/to/file][@ref]. Without
// a path the repository README is fetched.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// MaxFileBytes caps fetched file size (1MB, the contents API limit).
	MaxFileBytes = 1024 * 1024
)

// Config holds configuration for the GitHub provider.
type Config struct {
	// Token authenticates API requests. Optional; public repositories
	// work unauthenticated at a lower rate limit.
	Token string

	// Timeout is the HTTP request timeout (default: 30s).
	Timeout time.Duration
}

// Provider fetches files from GitHub repositories.
type Provider struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewProvider creates a GitHub content provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	return &Provider{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
}

// ref describes one parsed github:// reference.
type ref struct {
	Owner string
	Repo  string
	Path  string
	Git   string // branch, tag, or commit; empty means default branch
}

// parseRef parses github://owner/repo[/path][@ref].
func parseRef(raw string) (ref, error) {
	const scheme = "github://"
	if !strings.HasPrefix(raw, scheme) {
		return ref{}, fmt.Errorf("%w: %q is not a github:// reference", domain.ErrInvalidInput, raw)
	}

	rest := strings.TrimPrefix(raw, scheme)
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return splitRepoPath(raw, rest[:at], rest[at+1:])
	}
	return splitRepoPath(raw, rest, "")
}

func splitRepoPath(raw, repoPath, git string) (ref, error) {
	parts := strings.SplitN(strings.Trim(repoPath, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ref{}, fmt.Errorf("%w: %q needs at least github://owner/repo", domain.ErrInvalidInput, raw)
	}

	r := ref{Owner: parts[0], Repo: parts[1], Git: git}
	if len(parts) == 3 {
		r.Path = parts[2]
	}
	return r, nil
}

// Fetch retrieves the referenced file, or the repository README when
// the reference names no path.
func (p *Provider) Fetch(ctx context.Context, raw string) (domain.RawContent, error) {
	parsed, err := parseRef(raw)
	if err != nil {
		return domain.RawContent{}, err
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return domain.RawContent{}, fmt.Errorf("rate limit wait: %w", err)
	}

	var text, title string
	if parsed.Path == "" {
		text, title, err = p.fetchReadme(ctx, parsed)
	} else {
		text, title, err = p.fetchFile(ctx, parsed)
	}
	if err != nil {
		return domain.RawContent{}, err
	}

	return domain.RawContent{
		Title: title,
		Text:  text,
		Kind:  domain.SourceURL,
		Ref:   raw,
	}, nil
}

// fetchReadme gets the repository README on the requested ref.
func (p *Provider) fetchReadme(ctx context.Context, r ref) (text, title string, err error) {
	opts := &gh.RepositoryContentGetOptions{Ref: r.Git}
	readme, resp, err := p.gh.Repositories.GetReadme(ctx, r.Owner, r.Repo, opts)
	p.updateRateLimit(resp)
	if err != nil {
		return "", "", fmt.Errorf("fetching README of %s/%s: %w", r.Owner, r.Repo, err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding README of %s/%s: %w", r.Owner, r.Repo, err)
	}
	return content, r.Owner + "/" + r.Repo, nil
}

// fetchFile gets one file's decoded content via the contents API.
func (p *Provider) fetchFile(ctx context.Context, r ref) (text, title string, err error) {
	opts := &gh.RepositoryContentGetOptions{Ref: r.Git}
	file, _, resp, err := p.gh.Repositories.GetContents(ctx, r.Owner, r.Repo, r.Path, opts)
	p.updateRateLimit(resp)
	if err != nil {
		return "", "", fmt.Errorf("fetching %s from %s/%s: %w", r.Path, r.Owner, r.Repo, err)
	}
	if file == nil {
		return "", "", fmt.Errorf("%w: %s is a directory in %s/%s", domain.ErrInvalidInput, r.Path, r.Owner, r.Repo)
	}
	if file.GetSize() > MaxFileBytes {
		return "", "", fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrUnsupportedSource, r.Path, MaxFileBytes)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", r.Path, err)
	}
	return content, r.Owner + "/" + r.Repo + "/" + r.Path, nil
}

func (p *Provider) updateRateLimit(resp *gh.Response) {
	if resp != nil {
		p.rateLimiter.UpdateFromResponse(resp.Response)
	}
}

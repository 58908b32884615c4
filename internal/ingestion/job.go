package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/fetch"
)

var (
	// ErrEmptyJobDescription is returned when no text could be extracted.
	ErrEmptyJobDescription = errors.New("job description is empty")
	// ErrHTTPRequestFailed is returned when the posting could not be downloaded.
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
)

// JobPosting is a cleaned job description with its provenance.
type JobPosting struct {
	Text     string
	Metadata *Metadata
}

// Loader reads job descriptions from URLs and files.
type Loader struct {
	options  *fetch.Options
	renderer fetch.Renderer
	limit    int
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRenderer enables a browser fallback for pages whose HTTP text is too short.
func WithRenderer(r fetch.Renderer) LoaderOption {
	return func(l *Loader) { l.renderer = r }
}

// WithFetchOptions overrides the HTTP options.
func WithFetchOptions(opts *fetch.Options) LoaderOption {
	return func(l *Loader) { l.options = opts }
}

// WithLimit overrides MaxJobDescriptionChars.
func WithLimit(n int) LoaderOption {
	return func(l *Loader) { l.limit = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		options: fetch.DefaultOptions(),
		limit:   MaxJobDescriptionChars,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromURL downloads a posting and extracts its text.
func (l *Loader) FromURL(ctx context.Context, urlStr string) (*JobPosting, error) {
	urlStr = strings.TrimSpace(urlStr)
	site := fetch.SiteFor(urlStr)
	logger := l.logger.With(zap.String("url", urlStr), zap.String("site", site.Name))

	result, err := fetch.URL(ctx, urlStr, l.options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	html := result.HTML
	text, err := fetch.ExtractText(html, site)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted job posting", zap.Int("chars", len(text)))

	rendered := false
	if l.renderer != nil && fetch.NeedsBrowser(text) {
		logger.Info("posting text too short, rendering in browser", zap.Int("chars", len(text)))
		if browserHTML, renderErr := l.renderer.Render(ctx, urlStr); renderErr != nil {
			logger.Warn("browser rendering failed, using HTTP content", zap.Error(renderErr))
		} else if browserText, extractErr := fetch.ExtractText(browserHTML, site); extractErr == nil && len(browserText) > len(text) {
			html, text, rendered = browserHTML, browserText, true
		}
	}

	posting, err := l.finish(text, urlStr)
	if err != nil {
		return nil, err
	}
	posting.Metadata.Title = fetch.Title(html)
	posting.Metadata.Site = site.Name
	posting.Metadata.Rendered = rendered
	return posting, nil
}

// FromFile reads a plain-text posting.
func (l *Loader) FromFile(path string) (*JobPosting, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.finish(string(content), "")
}

// FromText cleans text supplied directly.
func (l *Loader) FromText(text string) (*JobPosting, error) {
	return l.finish(text, "")
}

// FetchJobDescription returns only the cleaned text of the posting at urlStr.
func (l *Loader) FetchJobDescription(ctx context.Context, urlStr string) (string, error) {
	posting, err := l.FromURL(ctx, urlStr)
	if err != nil {
		return "", err
	}
	return posting.Text, nil
}

func (l *Loader) finish(text, url string) (*JobPosting, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, ErrEmptyJobDescription
	}
	cleaned, truncated := Truncate(cleaned, l.limit)
	meta := newMetadata(cleaned, url)
	meta.Truncated = truncated
	return &JobPosting{Text: cleaned, Metadata: meta}, nil
}

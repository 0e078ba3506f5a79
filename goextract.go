// Package goextract extracts a normalized article record from a web page URL.
//
//	a, err := goextract.ExtractArticle(ctx, "https://example.com/post")
//	if errors.Is(err, goextract.ErrTimeout) {
//		// retry later
//	}
package goextract

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/goextract/internal/buildinfo"
	"github.com/hyperifyio/goextract/internal/extract"
	"github.com/hyperifyio/goextract/internal/fetch"
)

// DefaultUserAgent is sent when no WithUserAgent option is given. It is the
// same identity the goextract CLI uses.
func DefaultUserAgent() string { return buildinfo.UserAgent() }

type (
	ParsedArticle = extract.ParsedArticle
	Error         = extract.Error
	Kind          = extract.Kind
	Stage         = extract.Stage
)

const (
	KindTimeout          = extract.KindTimeout
	KindFetchFailed      = extract.KindFetchFailed
	KindParseFailed      = extract.KindParseFailed
	KindExtractionFailed = extract.KindExtractionFailed
)

var (
	ErrTimeout          = extract.ErrTimeout
	ErrFetchFailed      = extract.ErrFetchFailed
	ErrParseFailed      = extract.ErrParseFailed
	ErrExtractionFailed = extract.ErrExtractionFailed
)

// KindOf reports the failure kind carried by err, or zero if err is not an extraction error.
func KindOf(err error) Kind { return extract.KindOf(err) }

// Option configures an Extractor.
type Option func(*options)

type options struct {
	client *fetch.Client
	logger *zerolog.Logger
}

// WithTimeout bounds each call, including reading the body.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.client.Timeout = d } }

// WithUserAgent sets the User-Agent request header.
func WithUserAgent(ua string) Option { return func(o *options) { o.client.UserAgent = ua } }

// WithHTTPClient supplies the transport. Its Timeout should be zero; the
// per-call deadline set by WithTimeout governs.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.client.HTTPClient = c } }

// WithMaxBodyBytes caps how much of a response is read. Negative disables the cap.
func WithMaxBodyBytes(n int64) Option { return func(o *options) { o.client.MaxBodyBytes = n } }

// WithMaxConcurrent limits in-flight fetches across calls on one Extractor.
func WithMaxConcurrent(n int) Option { return func(o *options) { o.client.MaxConcurrent = n } }

// WithLogger receives stage transitions at debug level.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = &l } }

// Extractor is safe for concurrent use.
type Extractor struct {
	ex *extract.Extractor
}

func New(opts ...Option) *Extractor {
	o := options{client: &fetch.Client{UserAgent: DefaultUserAgent()}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor{ex: extract.New(o.client, o.logger)}
}

// ExtractArticle fetches url and returns its article, or an *Error.
func (e *Extractor) ExtractArticle(ctx context.Context, url string) (*ParsedArticle, error) {
	return e.ex.Extract(ctx, url)
}

// FromHTML runs extraction on an already fetched body. contentType may be empty.
func (e *Extractor) FromHTML(url string, body []byte, contentType string) (*ParsedArticle, error) {
	return e.ex.FromHTML(url, body, contentType)
}

var defaultExtractor = New()

// ExtractArticle uses a default Extractor with a 10 second deadline.
func ExtractArticle(ctx context.Context, url string) (*ParsedArticle, error) {
	return defaultExtractor.ExtractArticle(ctx, url)
}

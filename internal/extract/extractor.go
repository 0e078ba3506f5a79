// Package extract turns a single URL into a normalized article record.
//
// The pipeline runs Fetching, Parsing, Extracting and Normalizing in order.
// Any stage failure aborts the call with one *Error; no partial record is
// ever returned. Each field is read through a fixed fallback chain where the
// first valid candidate wins.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/goextract/internal/document"
	"github.com/hyperifyio/goextract/internal/fetch"
)

// Stage names a step of one extraction call.
type Stage int

const (
	StageFetching Stage = iota
	StageParsing
	StageExtracting
	StageNormalizing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageFetching:
		return "fetching"
	case StageParsing:
		return "parsing"
	case StageExtracting:
		return "extracting"
	case StageNormalizing:
		return "normalizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParsedArticle is the normalized output of one extraction call.
// Optional fields are empty (or nil) when absent.
type ParsedArticle struct {
	Title       string
	Content     string
	Excerpt     string
	ImageURL    string
	Author      string
	PublishedAt *time.Time
}

type articleJSON struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Excerpt     string `json:"excerpt"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishedAt *int64 `json:"publishedAt,omitempty"`
}

// MarshalJSON encodes PublishedAt as epoch milliseconds and omits absent fields.
func (a ParsedArticle) MarshalJSON() ([]byte, error) {
	out := articleJSON{
		Title:    a.Title,
		Content:  a.Content,
		Excerpt:  a.Excerpt,
		ImageURL: a.ImageURL,
		Author:   a.Author,
	}
	if a.PublishedAt != nil {
		ms := a.PublishedAt.UnixMilli()
		out.PublishedAt = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *ParsedArticle) UnmarshalJSON(b []byte) error {
	var in articleJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*a = ParsedArticle{
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		ImageURL: in.ImageURL,
		Author:   in.Author,
	}
	if in.PublishedAt != nil {
		t := time.UnixMilli(*in.PublishedAt).UTC()
		a.PublishedAt = &t
	}
	return nil
}

// Fetcher performs the single network request of an extraction call.
// *fetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Extractor runs the pipeline. It holds no per-call state and is safe for
// concurrent use.
type Extractor struct {
	Fetcher Fetcher
	// Logger receives stage transitions at debug level. Nil disables logging.
	Logger *zerolog.Logger
}

// New returns an Extractor using f for network access.
func New(f Fetcher, logger *zerolog.Logger) *Extractor {
	return &Extractor{Fetcher: f, Logger: logger}
}

func (e *Extractor) log() *zerolog.Logger {
	if e.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return e.Logger
}

// Extract fetches rawURL and derives a ParsedArticle from it.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*ParsedArticle, error) {
	if e.Fetcher == nil {
		return nil, e.fail(rawURL, StageFetching, KindFetchFailed, errors.New("no fetcher configured"))
	}
	started := time.Now()
	e.enter(rawURL, StageFetching)
	resp, err := e.Fetcher.Get(ctx, rawURL)
	if err != nil {
		kind := KindFetchFailed
		if errors.Is(err, fetch.ErrTimeout) {
			kind = KindTimeout
		}
		return nil, e.fail(rawURL, StageFetching, kind, err)
	}
	e.log().Debug().Str("url", rawURL).
		Int("status", resp.StatusCode).
		Str("final_url", resp.FinalURL).
		Int("bytes", len(resp.Body)).
		Bool("truncated", resp.Truncated).
		Msg("fetched")

	a, err := e.fromBody(rawURL, resp.Body, resp.ContentType)
	if err != nil {
		return nil, err
	}
	e.log().Debug().Str("url", rawURL).Dur("elapsed", time.Since(started)).Str("title", a.Title).Msg("extracted")
	return a, nil
}

// FromHTML runs the parsing, extracting and normalizing stages over an
// already fetched body. rawURL is used only for error context.
func (e *Extractor) FromHTML(rawURL string, body []byte, contentType string) (*ParsedArticle, error) {
	return e.fromBody(rawURL, body, contentType)
}

// FromHTML is Extractor.FromHTML without logging.
func FromHTML(rawURL string, body []byte, contentType string) (*ParsedArticle, error) {
	return (&Extractor{}).fromBody(rawURL, body, contentType)
}

func (e *Extractor) fromBody(rawURL string, body []byte, contentType string) (*ParsedArticle, error) {
	e.enter(rawURL, StageParsing)
	doc, err := document.Parse(body, contentType)
	if err != nil {
		return nil, e.fail(rawURL, StageParsing, KindParseFailed, err)
	}
	e.log().Debug().Str("url", rawURL).Str("charset", doc.Charset).Msg("parsed")

	e.enter(rawURL, StageExtracting)
	f, err := safeExtract(doc)
	if err != nil {
		return nil, e.fail(rawURL, StageExtracting, KindExtractionFailed, err)
	}

	e.enter(rawURL, StageNormalizing)
	a := normalize(f)
	e.enter(rawURL, StageDone)
	return a, nil
}

// safeExtract converts a panic in a field extractor into an error so that
// one degenerate document cannot take down the caller.
func safeExtract(doc *document.Document) (f fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return extractFields(doc), nil
}

func normalize(f fields) *ParsedArticle {
	title := NormalizeTitle(f.title)
	if title == "" {
		title = DefaultTitle
	}
	content := NormalizeContent(f.content)
	return &ParsedArticle{
		Title:       title,
		Content:     content,
		Excerpt:     Excerpt(content),
		ImageURL:    f.imageURL,
		Author:      NormalizeAuthor(f.author),
		PublishedAt: f.publishedAt,
	}
}

func (e *Extractor) enter(rawURL string, s Stage) {
	e.log().Debug().Str("url", rawURL).Stringer("stage", s).Msg("stage")
}

func (e *Extractor) fail(rawURL string, s Stage, k Kind, err error) *Error {
	e.log().Debug().Str("url", rawURL).Stringer("stage", StageFailed).Stringer("at", s).Str("kind", k.String()).Err(err).Msg("stage")
	return &Error{Kind: k, Stage: s, URL: rawURL, Err: err}
}

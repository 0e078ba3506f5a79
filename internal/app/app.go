package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/buildinfo"
	"github.com/hyperifyio/goextract/internal/extract"
	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/readtime"
	"github.com/hyperifyio/goextract/internal/urls"
)

// DefaultConcurrency bounds in-flight fetches when Config.Concurrency is zero.
const DefaultConcurrency = 4

// ErrAllFailed is returned when no URL in the batch produced an article.
// The CLI maps it to exit code 2.
var ErrAllFailed = errors.New("every URL failed")

type App struct {
	cfg        Config
	httpClient *http.Client
	extractor  *extract.Extractor
	stdout     io.Writer
}

// Record is one line of batch output. Exactly one of Article and Error is set.
type Record struct {
	URL                string                 `json:"url"`
	Article            *extract.ParsedArticle `json:"article,omitempty"`
	ReadingTimeMinutes int                    `json:"readingTimeMinutes,omitempty"`
	Error              string                 `json:"error,omitempty"`
	Kind               string                 `json:"kind,omitempty"`
}

func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSONL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = buildinfo.UserAgent()
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	hc := newBatchHTTPClient(cfg.Concurrency)
	client := &fetch.Client{
		HTTPClient:    hc,
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		MaxConcurrent: cfg.Concurrency,
	}
	return &App{
		cfg:        cfg,
		httpClient: hc,
		extractor:  extract.New(client, &log.Logger),
		stdout:     os.Stdout,
	}, nil
}

// Close releases pooled keep-alive connections held by the batch transport.
func (a *App) Close() {
	a.httpClient.CloseIdleConnections()
}

// Run extracts every configured URL and writes one record per URL, in input
// order. Individual failures are logged and recorded; Run itself fails only
// when the batch cannot start, output cannot be written, every URL failed, or
// FailFast stopped the batch.
func (a *App) Run(ctx context.Context) error {
	targets, err := a.targets()
	if err != nil {
		return err
	}
	log.Info().Int("urls", len(targets)).Int("concurrency", a.cfg.Concurrency).Msg("extracting")

	records, firstErr := a.extractAll(ctx, targets)

	if err := a.write(records); err != nil {
		return err
	}

	failed := 0
	for _, r := range records {
		if r.Article == nil {
			failed++
		}
	}
	log.Info().Int("ok", len(records)-failed).Int("failed", failed).Msg("done")

	if a.cfg.FailFast && firstErr != nil {
		return fmt.Errorf("stopped after first failure: %w", firstErr)
	}
	if failed == len(records) {
		return ErrAllFailed
	}
	return nil
}

// targets merges positional URLs with the input file and removes duplicates.
func (a *App) targets() ([]string, error) {
	list := append([]string{}, a.cfg.Inputs...)
	if a.cfg.InputPath != "" {
		f, err := os.Open(a.cfg.InputPath)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		fromFile, err := urls.Read(f)
		if err != nil {
			return nil, err
		}
		list = append(list, fromFile...)
	}
	list = urls.Dedupe(list)
	if len(list) == 0 {
		return nil, errors.New("no URLs to extract")
	}
	return list, nil
}

// extractAll fans out one goroutine per URL. The fetch client's MaxConcurrent
// gate bounds how many are in flight. With FailFast the shared context is
// cancelled on the first failure, which aborts requests still running.
func (a *App) extractAll(ctx context.Context, targets []string) ([]Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make([]Record, len(targets))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i, u := range targets {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			var err error
			records[i], err = a.extractOne(ctx, u)
			if err != nil && a.cfg.FailFast {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(i, u)
	}
	wg.Wait()
	return records, firstErr
}

func (a *App) extractOne(ctx context.Context, u string) (Record, error) {
	article, err := a.extractor.Extract(ctx, u)
	if err != nil {
		kind := extract.KindOf(err).String()
		log.Warn().Err(err).Str("url", u).Str("kind", kind).Msg("extraction failed")
		return Record{URL: u, Error: err.Error(), Kind: kind}, err
	}
	rec := Record{URL: u, Article: article, ReadingTimeMinutes: readtime.Minutes(article.Content)}
	log.Debug().Str("url", u).Str("title", article.Title).Int("minutes", rec.ReadingTimeMinutes).Msg("extracted")
	return rec, nil
}

func (a *App) write(records []Record) (err error) {
	var w io.Writer = a.stdout
	if a.cfg.OutputPath != "" && a.cfg.OutputPath != "-" {
		f, err := os.Create(a.cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)
	if err := encodeRecords(bw, a.cfg.Format, records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return bw.Flush()
}

func encodeRecords(w io.Writer, format string, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if format == FormatJSON {
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

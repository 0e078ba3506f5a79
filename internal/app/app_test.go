package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/goextract/internal/buildinfo"
	"github.com/hyperifyio/goextract/internal/extract"
)

func articleServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Hello"></head><body><article><p>` +
			strings.Repeat("word ", 450) + `</p></article></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var out []Record
	dec := json.NewDecoder(bytes.NewReader(b))
	for dec.More() {
		var r Record
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decode record: %v\n%s", err, b)
		}
		out = append(out, r)
	}
	return out
}

func TestRun_WritesJSONLInInputOrder(t *testing.T) {
	srv := articleServer(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "urls.txt")
	// The fragment variant is a duplicate of /ok and must be dropped.
	list := "# batch\n" + srv.URL + "/missing\n" + srv.URL + "/ok#top\n"
	if err := os.WriteFile(input, []byte(list), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "out.jsonl")

	a, err := New(Config{Inputs: []string{srv.URL + "/ok"}, InputPath: input, OutputPath: out, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	recs := readRecords(t, out)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records after dedupe, got %d", len(recs))
	}
	ok, missing := recs[0], recs[1]
	if ok.URL != srv.URL+"/ok" || ok.Article == nil || ok.Article.Title != "Hello" {
		t.Fatalf("unexpected first record %+v", ok)
	}
	if ok.ReadingTimeMinutes != 3 {
		t.Fatalf("450 words should read in 3 minutes, got %d", ok.ReadingTimeMinutes)
	}
	if missing.Article != nil || missing.Kind != "FetchFailed" || !strings.Contains(missing.Error, "404") {
		t.Fatalf("unexpected failure record %+v", missing)
	}
}

func TestRun_JSONArrayFormat(t *testing.T) {
	srv := articleServer(t)
	out := filepath.Join(t.TempDir(), "out.json")
	a, err := New(Config{Inputs: []string{srv.URL + "/ok"}, OutputPath: out, Format: FormatJSON})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var recs []map[string]any
	if err := json.Unmarshal(b, &recs); err != nil {
		t.Fatalf("expected a JSON array: %v\n%s", err, b)
	}
	art, _ := recs[0]["article"].(map[string]any)
	if art["title"] != "Hello" {
		t.Fatalf("unexpected record %v", recs[0])
	}
	if _, ok := art["imageUrl"]; ok {
		t.Fatalf("absent imageUrl must be omitted")
	}
}

func TestRun_AllFailed(t *testing.T) {
	srv := articleServer(t)
	a, err := New(Config{Inputs: []string{srv.URL + "/missing"}, OutputPath: filepath.Join(t.TempDir(), "o.jsonl")})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Run(context.Background()); !errors.Is(err, ErrAllFailed) {
		t.Fatalf("expected ErrAllFailed, got %v", err)
	}
}

func TestRun_FailFastReturnsCause(t *testing.T) {
	srv := articleServer(t)
	a, err := New(Config{
		Inputs:     []string{srv.URL + "/ok", srv.URL + "/missing"},
		OutputPath: filepath.Join(t.TempDir(), "o.jsonl"),
		FailFast:   true,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	err = a.Run(context.Background())
	if !errors.Is(err, extract.ErrFetchFailed) {
		t.Fatalf("expected FetchFailed cause, got %v", err)
	}
}

func TestRun_SendsConfiguredUserAgentAndLimitsConcurrency(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "batch-agent" {
			http.Error(w, "bad agent", http.StatusForbidden)
			return
		}
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<title>t</title><p>x</p>`))
	}))
	defer srv.Close()

	var inputs []string
	for i := 0; i < 8; i++ {
		inputs = append(inputs, srv.URL+"/?id="+string(rune('a'+i)))
	}
	a, err := New(Config{Inputs: inputs, UserAgent: "batch-agent", Concurrency: 2, OutputPath: filepath.Join(t.TempDir(), "o.jsonl")})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 in flight, saw %d", p)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without URLs")
	}
}

func TestRun_DefaultUserAgentMatchesLibrary(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<title>t</title><p>x</p>`))
	}))
	defer srv.Close()

	a, err := New(Config{Inputs: []string{srv.URL}, OutputPath: filepath.Join(t.TempDir(), "o.jsonl")})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, _ := gotUA.Load().(string); got != buildinfo.UserAgent() {
		t.Fatalf("User-Agent=%q, want %q", got, buildinfo.UserAgent())
	}
}

// Close drops idle keep-alive connections; the server sees them closed.
func TestClose_ReleasesIdleConnections(t *testing.T) {
	closed := make(chan struct{}, 1)
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<title>t</title><p>x</p>`))
	}))
	srv.Config.ConnState = func(_ net.Conn, st http.ConnState) {
		if st == http.StateClosed {
			select {
			case closed <- struct{}{}:
			default:
			}
		}
	}
	srv.Start()
	defer srv.Close()

	a, err := New(Config{Inputs: []string{srv.URL}, OutputPath: filepath.Join(t.TempDir(), "o.jsonl")})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	a.Close()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("idle connection not closed by Close")
	}
}

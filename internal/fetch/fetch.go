package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds a single fetch when Client.Timeout is zero.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes int64 = 5 << 20
	// DefaultRedirectMaxHops caps redirect following when RedirectMaxHops is zero.
	DefaultRedirectMaxHops = 10
)

// Response is the raw result of a successful fetch.
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
	// FinalURL is the URL after redirects.
	FinalURL string
	// Truncated reports whether the body was cut at MaxBodyBytes.
	Truncated bool
}

// Client wraps http.Client and performs one bounded-time GET per call.
// It never retries; retry policy belongs to the caller.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request, including reading the body. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxBodyBytes caps the bytes read from a response body. Zero means
	// DefaultMaxBodyBytes, negative disables the cap.
	MaxBodyBytes int64
	// RedirectMaxHops caps redirect following to avoid loops. Zero means DefaultRedirectMaxHops.
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int

	// internal limiter initialized on first use when MaxConcurrent > 0
	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) maxBody() int64 {
	if c.MaxBodyBytes == 0 {
		return DefaultMaxBodyBytes
	}
	return c.MaxBodyBytes
}

// Get issues exactly one GET for rawURL. The deadline is attached to the
// request context so that expiry aborts the underlying connection.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("parse url: %w", err)}
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(u) || u.Host == "" {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("unsupported URL: %q", rawURL)}
	}

	if err := c.acquire(ctx); err != nil {
		return nil, c.classify(ctx, rawURL, err)
	}
	defer c.release()

	deadline := c.timeout()
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, c.classify(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	body, truncated, err := readCapped(resp.Body, c.maxBody())
	if err != nil {
		return nil, c.classify(ctx, rawURL, fmt.Errorf("read body: %w", err))
	}
	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    final,
		Truncated:   truncated,
	}, nil
}

// classify reports TimeoutError only when the call's own deadline has fired.
// Dial or TLS handshake timeouts of the transport, and cancellation by the
// caller, stay a TransportError carrying the cause.
func (c *Client) classify(ctx context.Context, rawURL string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: rawURL, Deadline: c.timeout(), Err: err}
	}
	return &TransportError{URL: rawURL, Err: err}
}

func readCapped(r io.Reader, max int64) ([]byte, bool, error) {
	if max < 0 {
		b, err := io.ReadAll(r)
		return b, false, err
	}
	// Read one byte past the cap to learn whether the body was longer.
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > max {
		return b[:max], true, nil
	}
	return b, false, nil
}

func statusText(resp *http.Response) string {
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = DefaultRedirectMaxHops
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *Client) acquire(ctx context.Context) error {
	if c.MaxConcurrent <= 0 {
		return nil
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	select {
	case c.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
		// should not happen, but avoid blocking
	}
}

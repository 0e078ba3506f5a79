// Package urls reads and de-duplicates the batch of target URLs handed to the CLI.
package urls

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// trackingParams are ignored when deciding whether two URLs are the same page.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

// Read parses one URL per line from r. Blank lines and lines starting with
// '#' are skipped.
func Read(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return out, nil
}

// Dedupe drops later occurrences of the same page, comparing canonical keys,
// and returns the surviving URLs unchanged and in input order.
func Dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		key := Key(raw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, raw)
	}
	return out
}

// Key canonicalizes a URL for comparison: fragment dropped, host lowercased,
// tracking parameters removed. Unparseable input is its own key.
func Key(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

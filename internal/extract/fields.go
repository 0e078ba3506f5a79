package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"github.com/hyperifyio/goextract/internal/document"
)

// Fallback chains, highest priority first.
var (
	titleChain = Chain{
		meta("og:title"),
		meta("twitter:title"),
		text("h1"),
		text("title"),
	}

	contentChain = Chain{
		text("article"),
		text("main"),
		text(`[role="main"]`),
		text("body"),
	}

	imageChain = Chain{
		meta("og:image"),
		meta("twitter:image"),
		attr("article img, main img", "src"),
	}

	authorChain = Chain{
		meta("author"),
		meta("article:author"),
		meta("twitter:creator"),
		text(`[rel~="author"]`),
	}

	publishedChain = Chain{
		meta("article:published_time"),
		meta("publish-date"),
		attr("time[datetime]", "datetime"),
	}
)

// noiseSelectors are removed from the working copy before content is read.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "header", "footer", "aside",
	".ad", ".advertisement",
}

// fields is the raw outcome of the extracting stage, before normalization.
type fields struct {
	title       string
	content     string
	imageURL    string
	author      string
	publishedAt *time.Time
}

func extractFields(doc *document.Document) fields {
	var f fields
	f.title, _, _ = firstOf(doc, titleChain, nonBlank)

	clean := doc.Without(isConsentBanner, noiseSelectors...)
	f.content, _, _ = firstOf(clean, contentChain, nonBlank)

	f.imageURL, _, _ = firstOf(doc, imageChain, absoluteURL)
	f.author, _, _ = firstOf(doc, authorChain, nonBlank)
	if t, _, ok := firstOf(doc, publishedChain, parseDateTime); ok {
		f.publishedAt = &t
	}
	return f
}

func nonBlank(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// absoluteURL accepts only syntactically valid absolute URLs with a host.
// Relative and protocol-relative references are rejected, not resolved.
func absoluteURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// parseDateTime accepts RFC 3339 first and falls back to dateparse for the
// many loose formats found in the wild. Zone-less values are read as UTC.
// Values without a calendar date, such as "12:30" or a bare year, are rejected.
func parseDateTime(s string) (t time.Time, ok bool) {
	// dateparse has panicked on some malformed inputs; treat that as invalid.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if !hasDateComponent(s) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// hasDateComponent reports whether s can name a day: a month name, three or
// more digit groups, or one packed group such as 20240305 or an epoch timestamp.
func hasDateComponent(s string) bool {
	if containsAny(strings.ToLower(s), monthNames...) {
		return true
	}
	groups, run := 0, 0
	for _, r := range s + " " {
		if r >= '0' && r <= '9' {
			run++
			continue
		}
		if run > 0 {
			groups++
			if run >= 8 {
				return true
			}
		}
		run = 0
	}
	return groups >= 3
}

// isConsentBanner returns true if the element looks like a cookie/consent banner.
func isConsentBanner(n *html.Node) bool {
	// Check id and class attributes for common markers
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if key != "id" && key != "class" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(a.Val)
		if containsAny(val, "cookie-banner", "cookiebar", "cookie-consent", "consent-banner", "consent-manager", "gdpr") {
			return true
		}
	}
	return false
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxTitleChars   = 200
	MaxContentChars = 100_000
	ExcerptChars    = 300
	Ellipsis        = "..."
	DefaultTitle    = "Untitled"
)

// CollapseWhitespace collapses runs of horizontal whitespace to one space,
// runs of newlines (and the blank lines between them) to one newline, and
// trims the result.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if collapsed := collapseSpaces(line); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}

// collapseSpaces turns every whitespace run, newlines included, into a single
// space and trims. Used for one-line fields.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		// byte length bounds rune count
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// NormalizeTitle collapses whitespace and caps the title at MaxTitleChars.
// Truncation is silent.
func NormalizeTitle(s string) string {
	return trimRight(Truncate(collapseSpaces(s), MaxTitleChars))
}

// NormalizeContent collapses whitespace and caps content at MaxContentChars.
// The ellipsis is appended only when truncation happened and counts toward the cap.
func NormalizeContent(s string) string {
	s = CollapseWhitespace(s)
	if utf8.RuneCountInString(s) <= MaxContentChars {
		return s
	}
	return trimRight(Truncate(s, MaxContentChars-len(Ellipsis))) + Ellipsis
}

// trimRight drops whitespace exposed by a cut at a word boundary.
func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Excerpt returns the first ExcerptChars characters of normalized content
// followed by the ellipsis, whether or not anything was cut.
func Excerpt(content string) string {
	return Truncate(content, ExcerptChars) + Ellipsis
}

// NormalizeAuthor trims and collapses an author candidate.
func NormalizeAuthor(s string) string {
	return collapseSpaces(s)
}

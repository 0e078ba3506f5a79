package document

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeText returns the text under n with a newline emitted at every block
// boundary, so that adjacent paragraphs do not run together. Whitespace is
// left for the caller to normalize.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "iframe":
			return
		case "br", "hr":
			b.WriteString("\n")
		}
		if isBlock(n.Data) {
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		b.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "section", "article", "main", "header", "footer", "aside", "nav",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dl", "dt", "dd",
		"pre", "blockquote", "figure", "figcaption",
		"table", "tr", "td", "th", "caption":
		return true
	}
	return false
}

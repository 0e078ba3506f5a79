// Package document builds a queryable HTML tree from fetched bytes.
//
// Parsing is lenient: unclosed tags, invalid nesting and stray markup are
// recovered the way browsers do (golang.org/x/net/html via goquery). The only
// hard failure is a body that cannot be treated as text at all.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned when the body is not text or markup.
var ErrUndecodable = errors.New("body is not decodable as text")

// Document is a parsed HTML tree owned by a single extraction call.
// It is not safe for concurrent mutation; Without returns an independent copy.
type Document struct {
	doc *goquery.Document
	// Charset is the encoding name the body was decoded from.
	Charset string
}

// Parse decodes body according to contentType (and any in-document charset
// declaration) and builds the tree. An empty contentType is sniffed.
func Parse(body []byte, contentType string) (*Document, error) {
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(body)
	}
	if !IsTextual(contentType) {
		return nil, fmt.Errorf("%w: content type %q", ErrUndecodable, contentType)
	}
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	r := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &Document{doc: doc, Charset: name}, nil
}

// FromString parses an already-decoded UTF-8 HTML string.
func FromString(s string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &Document{doc: doc, Charset: "utf-8"}, nil
}

// IsTextual reports whether a Content-Type value describes text or markup.
func IsTextual(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mt = strings.ToLower(mt)
	switch {
	case strings.HasPrefix(mt, "text/"):
		return true
	case mt == "application/xhtml+xml", mt == "application/xml", strings.HasSuffix(mt, "+xml"):
		return true
	}
	return false
}

// Find runs a CSS selector over the whole tree.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Meta returns the trimmed content of the first <meta> whose name or
// property attribute equals key (case-insensitively) and whose content is
// not blank.
func (d *Document) Meta(key string) string {
	var out string
	d.doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		prop, _ := s.Attr("property")
		if !strings.EqualFold(strings.TrimSpace(name), key) && !strings.EqualFold(strings.TrimSpace(prop), key) {
			return true
		}
		if v := strings.TrimSpace(s.AttrOr("content", "")); v != "" {
			out = v
			return false
		}
		return true
	})
	return out
}

// FirstText returns the block-aware text of the first element matching selector.
func (d *Document) FirstText(selector string) string {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return NodeText(sel.Get(0))
}

// FirstAttr returns the attribute value of the first element matching
// selector. ok is false when nothing matches or the attribute is missing.
func (d *Document) FirstAttr(selector, attr string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return sel.Attr(attr)
}

// Without returns a working copy with every element matching one of the
// selectors removed, plus every element for which drop reports true
// (drop may be nil). The receiver is left untouched.
func (d *Document) Without(drop func(*html.Node) bool, selectors ...string) *Document {
	root := cloneNode(d.doc.Get(0))
	cp := goquery.NewDocumentFromNode(root)
	if len(selectors) > 0 {
		cp.Find(strings.Join(selectors, ", ")).Remove()
	}
	if drop != nil {
		removeFunc(root, drop)
	}
	return &Document{doc: cp, Charset: d.Charset}
}

func removeFunc(n *html.Node, drop func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && drop(c) {
			n.RemoveChild(c)
		} else {
			removeFunc(c, drop)
		}
		c = next
	}
}

func cloneNode(n *html.Node) *html.Node {
	nn := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      make([]html.Attribute, len(n.Attr)),
	}
	copy(nn.Attr, n.Attr)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nn.AppendChild(cloneNode(c))
	}
	return nn
}

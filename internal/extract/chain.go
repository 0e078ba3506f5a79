package extract

import "github.com/hyperifyio/goextract/internal/document"

// Source produces one raw candidate for a field. An empty string means the
// source had nothing to offer.
type Source struct {
	Name string
	Get  func(*document.Document) string
}

// Chain is a fixed, ordered fallback list for one field.
type Chain []Source

// firstOf evaluates the chain lazily and returns the first candidate that
// accept converts successfully, along with the name of the winning source.
// Later sources are never consulted once one wins.
func firstOf[T any](doc *document.Document, c Chain, accept func(string) (T, bool)) (T, string, bool) {
	for _, src := range c {
		raw := src.Get(doc)
		if raw == "" {
			continue
		}
		if v, ok := accept(raw); ok {
			return v, src.Name, true
		}
	}
	var zero T
	return zero, "", false
}

func meta(key string) Source {
	return Source{Name: "meta:" + key, Get: func(d *document.Document) string { return d.Meta(key) }}
}

func text(selector string) Source {
	return Source{Name: "text:" + selector, Get: func(d *document.Document) string { return d.FirstText(selector) }}
}

func attr(selector, name string) Source {
	return Source{Name: "attr:" + selector + "@" + name, Get: func(d *document.Document) string {
		v, _ := d.FirstAttr(selector, name)
		return v
	}}
}

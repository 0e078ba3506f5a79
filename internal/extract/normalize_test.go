package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"a\t\tb", "a b"},
		{"one\n\n\n  \n two", "one\ntwo"},
		{"line\r\nnext\rlast", "line\nnext\nlast"},
		{" nbsp  here ", "nbsp here"},
		{"   \n\t  ", ""},
	}
	for _, c := range cases {
		if got := CollapseWhitespace(c.in); got != c.want {
			t.Fatalf("CollapseWhitespace(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	if got := Truncate("héllo wörld", 7); got != "héllo w" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("日本語テキスト", 3); got != "日本語" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestNormalizeTitle_CapsWithoutSuffix(t *testing.T) {
	long := strings.Repeat("t", 500)
	got := NormalizeTitle("  " + long + "  ")
	if utf8.RuneCountInString(got) != MaxTitleChars {
		t.Fatalf("expected %d chars, got %d", MaxTitleChars, utf8.RuneCountInString(got))
	}
	if strings.HasSuffix(got, Ellipsis) {
		t.Fatalf("title truncation must not add an ellipsis")
	}
	if got := NormalizeTitle("Multi\n  line\ttitle"); got != "Multi line title" {
		t.Fatalf("expected single-line title, got %q", got)
	}
}

func TestNormalizeContent_EllipsisOnlyWhenTruncated(t *testing.T) {
	short := "just some text"
	if got := NormalizeContent(short); got != short {
		t.Fatalf("expected untouched short content, got %q", got)
	}

	exact := strings.Repeat("x", MaxContentChars)
	if got := NormalizeContent(exact); got != exact {
		t.Fatalf("content at the cap must not be truncated")
	}

	over := strings.Repeat("é", MaxContentChars+1)
	got := NormalizeContent(over)
	if n := utf8.RuneCountInString(got); n != MaxContentChars {
		t.Fatalf("expected %d chars, got %d", MaxContentChars, n)
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Fatalf("expected ellipsis after truncation")
	}
}

func TestExcerpt_AlwaysSuffixed(t *testing.T) {
	if got := Excerpt("tiny"); got != "tiny..." {
		t.Fatalf("expected unconditional ellipsis, got %q", got)
	}
	if got := Excerpt(""); got != "..." {
		t.Fatalf("expected bare ellipsis for empty content, got %q", got)
	}
	long := strings.Repeat("ab", 400)
	got := Excerpt(long)
	if got != long[:ExcerptChars]+Ellipsis {
		t.Fatalf("expected first %d chars plus ellipsis", ExcerptChars)
	}
}

func TestTruncatedFieldsDoNotEndInWhitespace(t *testing.T) {
	// A space lands exactly at each cut point.
	title := NormalizeTitle(strings.Repeat("a", MaxTitleChars-1) + " tail")
	if strings.HasSuffix(title, " ") || title != strings.Repeat("a", MaxTitleChars-1) {
		t.Fatalf("title ends in whitespace: %q", title[len(title)-5:])
	}

	content := NormalizeContent(strings.Repeat("a", MaxContentChars-len(Ellipsis)-1) + " " + strings.Repeat("b", 10))
	if !strings.HasSuffix(content, "a"+Ellipsis) {
		t.Fatalf("content tail %q", content[len(content)-6:])
	}
	if utf8.RuneCountInString(content) > MaxContentChars {
		t.Fatalf("content over cap")
	}
}

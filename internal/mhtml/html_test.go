package mhtml

import (
	"strings"
	"testing"
)

func testReplacements(t *testing.T) *ReplacementMap {
	t.Helper()
	records := []AssetRecord{
		{LocalPath: "assets/bg.png", ContentID: "img1", Location: "https://example.com/assets/bg.png"},
		{LocalPath: "assets/style.css", ContentID: "sheet1"},
	}
	return BuildReplacements(records, testOrigin(t))
}

func TestRewriteDocumentCidReference(t *testing.T) {
	in := `<html><body><img src="cid:img1"></body></html>`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	if !strings.Contains(got, `src="assets/bg.png"`) {
		t.Errorf("cid reference not substituted\n  got: %s", got)
	}
}

// A reference resolved by the literal-substitution pass must never be
// promoted to an absolute origin URL afterwards.
func TestRewriteDocumentResolvedNotPromoted(t *testing.T) {
	in := `<link href="/assets/bg.png">`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	if got != `<link href="assets/bg.png">` {
		t.Errorf("mapped root-relative reference\n  got  %q\n  want %q",
			got, `<link href="assets/bg.png">`)
	}
}

// Unmapped root-relative references are promoted with no doubled separator.
func TestRewriteDocumentPromotion(t *testing.T) {
	in := `<a href="/foo/bar">x</a>`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	want := `<a href="https://example.com/foo/bar">x</a>`
	if got != want {
		t.Errorf("promotion\n  got  %q\n  want %q", got, want)
	}
}

// Single-quoted attributes keep their quoting style.
func TestRewriteDocumentPromotionSingleQuote(t *testing.T) {
	in := `<form action='/submit'>`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	want := `<form action='https://example.com/submit'>`
	if got != want {
		t.Errorf("single-quote promotion\n  got  %q\n  want %q", got, want)
	}
}

// Protocol-relative URLs (double separator) are not root-relative.
func TestRewriteDocumentProtocolRelativeUntouched(t *testing.T) {
	in := `<script src="//cdn.other.net/lib.js"></script>`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	if got != in {
		t.Errorf("protocol-relative URL must be left alone\n  got: %s", got)
	}
}

func TestPromoteStyleURLs(t *testing.T) {
	origin := testOrigin(t)
	cases := []struct {
		in   string
		want string
	}{
		// Bare form
		{"body { background: url(/img/bg.png); }",
			"body { background: url(https://example.com/img/bg.png); }"},
		// Double-quoted
		{`url("/img/bg.png")`, `url("https://example.com/img/bg.png")`},
		// Single-quoted
		{`url('/img/bg.png')`, `url('https://example.com/img/bg.png')`},
		// Entity-quoted, as it appears inside style attributes
		{`url(&quot;/img/bg.png&quot;)`, `url(&quot;https://example.com/img/bg.png&quot;)`},
		// Protocol-relative: untouched
		{"url(//cdn.other.net/x.png)", "url(//cdn.other.net/x.png)"},
		// Non-root-relative: untouched
		{"url(img/bg.png)", "url(img/bg.png)"},
		{"url(data:image/png;base64,AAAA)", "url(data:image/png;base64,AAAA)"},
	}

	for _, tc := range cases {
		if got := PromoteStyleURLs(tc.in, origin); got != tc.want {
			t.Errorf("PromoteStyleURLs(%q)\n  got  %q\n  want %q", tc.in, got, tc.want)
		}
	}
}

// Embedded <style> blocks go through the same promotion as attributes.
func TestRewriteDocumentEmbeddedStyle(t *testing.T) {
	in := `<style>body { background: url(/views/hero.jpg); }</style>`
	got := RewriteDocument(in, testReplacements(t), testOrigin(t))

	if !strings.Contains(got, "url(https://example.com/views/hero.jpg)") {
		t.Errorf("embedded style url() not promoted\n  got: %s", got)
	}
}

// Re-running the rewrite on its own output changes nothing.
func TestRewriteDocumentIdempotent(t *testing.T) {
	in := `<img src="cid:img1"><a href="/foo">x</a><style>div{background:url(/bar.png)}</style>`
	repl := testReplacements(t)
	origin := testOrigin(t)

	once := RewriteDocument(in, repl, origin)
	twice := RewriteDocument(once, repl, origin)
	if once != twice {
		t.Errorf("rewrite not idempotent\n  once  %q\n  twice %q", once, twice)
	}
}

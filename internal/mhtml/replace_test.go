package mhtml

import (
	"testing"
)

func testOrigin(t *testing.T) *Origin {
	t.Helper()
	origin, err := NormalizeOrigin("https://example.com")
	if err != nil {
		t.Fatalf("NormalizeOrigin: %v", err)
	}
	return origin
}

func TestBuildReplacementsKeys(t *testing.T) {
	records := []AssetRecord{{
		ContentType: "image/png",
		Name:        "bg.png",
		LocalPath:   "assets/bg.png",
		ContentID:   "img1",
		Location:    "https://example.com/assets/bg.png",
	}}

	repl := BuildReplacements(records, testOrigin(t))
	if repl.Len() != 3 {
		t.Fatalf("expected 3 keys (cid, location, path), got %d: %v", repl.Len(), repl.Keys())
	}
	for _, key := range []string{"cid:img1", "https://example.com/assets/bg.png", "/assets/bg.png"} {
		if got, ok := repl.Lookup(key); !ok || got != "assets/bg.png" {
			t.Errorf("Lookup(%q) = %q, %v; want %q, true", key, got, ok, "assets/bg.png")
		}
	}
}

// The bare-path key is only registered when the location's authority matches
// the configured origin.
func TestBuildReplacementsForeignAuthority(t *testing.T) {
	records := []AssetRecord{{
		LocalPath: "assets/lib.js",
		Location:  "https://cdn.other.net/lib.js",
	}}

	repl := BuildReplacements(records, testOrigin(t))
	if _, ok := repl.Lookup("/lib.js"); ok {
		t.Error("path key must not be registered for a foreign authority")
	}
	if _, ok := repl.Lookup("https://cdn.other.net/lib.js"); !ok {
		t.Error("literal location key must still be registered")
	}
}

// Authority comparison is case-insensitive but port-significant.
func TestBuildReplacementsAuthorityCase(t *testing.T) {
	records := []AssetRecord{{
		LocalPath: "assets/a.png",
		Location:  "https://EXAMPLE.com/a.png",
	}}

	repl := BuildReplacements(records, testOrigin(t))
	if _, ok := repl.Lookup("/a.png"); !ok {
		t.Error("authority match must be case-insensitive")
	}
}

// A text containing only the longer of two overlapping keys must be
// rewritten by the longer key, never clipped by its substring first.
func TestApplyKeyLengthPrecedence(t *testing.T) {
	records := []AssetRecord{
		{LocalPath: "assets/a.png", Location: "https://example.com/foo"},
		{LocalPath: "assets/b.png", Location: "https://example.com/foo/bar.png"},
	}

	repl := BuildReplacements(records, testOrigin(t))
	got := repl.Apply(`src="/foo/bar.png"`)
	if got != `src="assets/b.png"` {
		t.Errorf("longer key must win\n  got  %q\n  want %q", got, `src="assets/b.png"`)
	}
}

// Duplicate keys resolve last-writer-wins, reflecting archive part order.
func TestBuildReplacementsLastWriterWins(t *testing.T) {
	records := []AssetRecord{
		{LocalPath: "assets/old.png", Location: "https://example.com/logo.png"},
		{LocalPath: "assets/new.png", Location: "https://example.com/logo.png"},
	}

	repl := BuildReplacements(records, testOrigin(t))
	if got, _ := repl.Lookup("https://example.com/logo.png"); got != "assets/new.png" {
		t.Errorf("expected later record to win, got %q", got)
	}
}

// Applying the map to its own output is a no-op.
func TestApplyIdempotent(t *testing.T) {
	records := []AssetRecord{
		{LocalPath: "assets/bg.png", ContentID: "img1", Location: "https://example.com/assets/bg.png"},
		{LocalPath: "assets/style.css", ContentID: "sheet1"},
	}
	repl := BuildReplacements(records, testOrigin(t))

	text := `<img src="cid:img1"><link href="/assets/bg.png"><link href="cid:sheet1">`
	once := repl.Apply(text)
	twice := repl.Apply(once)
	if once != twice {
		t.Errorf("Apply not idempotent\n  once  %q\n  twice %q", once, twice)
	}
}

func TestBuildReplacementsNilOrigin(t *testing.T) {
	records := []AssetRecord{{
		LocalPath: "assets/a.png",
		Location:  "https://example.com/a.png",
	}}

	repl := BuildReplacements(records, nil)
	if _, ok := repl.Lookup("/a.png"); ok {
		t.Error("no path key without a configured origin")
	}
}

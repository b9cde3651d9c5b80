package mhtml

import (
	"testing"
)

func TestNormalizeOrigin(t *testing.T) {
	cases := []struct {
		in      string
		wantURL string
		wantErr bool
	}{
		// Scheme auto-prepended
		{"example.com", "https://example.com", false},
		// Explicit scheme and port preserved
		{"http://example.com:8080", "http://example.com:8080", false},
		// Path component dropped from the origin URL
		{"https://example.com/some/page", "https://example.com", false},
		// Unsupported scheme
		{"ftp://example.com", "", true},
		// Missing host
		{"https://", "", true},
		// Empty input
		{"", "", true},
	}

	for _, tc := range cases {
		origin, err := NormalizeOrigin(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizeOrigin(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeOrigin(%q): %v", tc.in, err)
			continue
		}
		if origin.URL != tc.wantURL {
			t.Errorf("NormalizeOrigin(%q)\n  got  %q\n  want %q", tc.in, origin.URL, tc.wantURL)
		}
	}
}

func TestSameAuthority(t *testing.T) {
	origin, err := NormalizeOrigin("https://example.com:8443")
	if err != nil {
		t.Fatalf("NormalizeOrigin: %v", err)
	}

	cases := []struct {
		authority string
		want      bool
	}{
		{"example.com:8443", true},
		{"EXAMPLE.COM:8443", true}, // case-insensitive
		{"example.com", false},     // ports are significant
		{"other.com:8443", false},
	}

	for _, tc := range cases {
		if got := origin.SameAuthority(tc.authority); got != tc.want {
			t.Errorf("SameAuthority(%q) = %v, want %v", tc.authority, got, tc.want)
		}
	}
}

func TestRelativeLink(t *testing.T) {
	cases := []struct {
		fromDir string
		toFile  string
		want    string
	}{
		{"/site", "/site/assets/bg.png", "assets/bg.png"},
		{"/site/pages", "/site/assets/bg.png", "../assets/bg.png"},
		{"/site", "/site/out.html", "out.html"},
	}

	for _, tc := range cases {
		if got := RelativeLink(tc.fromDir, tc.toFile); got != tc.want {
			t.Errorf("RelativeLink(%q, %q)\n  got  %q\n  want %q", tc.fromDir, tc.toFile, got, tc.want)
		}
	}
}

func TestToPosix(t *testing.T) {
	if got := ToPosix(`assets\bg.png`); got != "assets/bg.png" {
		t.Errorf("ToPosix: got %q", got)
	}
}

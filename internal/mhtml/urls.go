package mhtml

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/idna"
)

// Origin is the scheme-plus-authority of the site the archive was captured
// from. It is used purely as a text-substitution target and is never
// dereferenced.
type Origin struct {
	URL         string // "scheme://authority", no trailing slash
	Authority   string // host[:port] as written
	UnicodeHost string // IDN-decoded hostname
}

// NormalizeOrigin parses and normalises the configured origin value.
func NormalizeOrigin(input string) (*Origin, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty origin")
	}
	// Auto-prepend scheme if missing
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}

	// IDN decode for unicode host
	unicodeHost := u.Hostname()
	if decoded, err := idna.ToUnicode(u.Hostname()); err == nil {
		unicodeHost = decoded
	}

	return &Origin{
		URL:         u.Scheme + "://" + u.Host,
		Authority:   u.Host,
		UnicodeHost: unicodeHost,
	}, nil
}

// SameAuthority reports whether authority refers to the origin's host:port.
// Ports are significant; case is not.
func (o *Origin) SameAuthority(authority string) bool {
	return strings.EqualFold(authority, o.Authority)
}

// RelativeLink returns the relative path from fromDir to toFile.
func RelativeLink(fromDir, toFile string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(toFile))
	if err != nil {
		return toFile
	}
	return ToPosix(rel)
}

// ToPosix converts backslashes to forward slashes.
func ToPosix(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

package mhtml

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"
)

// fallbackBaseName is used when neither header yields a usable name.
const fallbackBaseName = "asset"

// AssetRecord is the materialized form of one non-primary part.
type AssetRecord struct {
	ContentType string
	Name        string // file name within the asset directory
	LocalPath   string // forward-slash path relative to the output document's directory
	ContentID   string
	Location    string
}

// knownExtensions maps content types whose mime-table extensions are
// ambiguous or missing to the conventional one.
var knownExtensions = map[string]string{
	"text/css":                 ".css",
	"application/javascript":   ".js",
	"text/javascript":          ".js",
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/gif":                ".gif",
	"image/svg+xml":            ".svg",
	"image/webp":               ".webp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"font/woff2":               ".woff2",
	"font/woff":                ".woff",
	"font/ttf":                 ".ttf",
	"font/otf":                 ".otf",
	"application/font-woff2":   ".woff2",
	"application/font-woff":    ".woff",
	"text/html":                ".html",
	"text/xml":                 ".xml",
	"application/xml":          ".xml",
	"application/json":         ".json",
}

var (
	reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	reRepeatSep  = regexp.MustCompile(`_+`)
)

// safeName reduces s to the safe filename alphabet: unsafe runs become a
// single separator, repeated separators collapse, and leading/trailing
// separators and dots are trimmed. Returns "" when nothing survives.
func safeName(s string) string {
	s = reUnsafeName.ReplaceAllString(s, "_")
	s = reRepeatSep.ReplaceAllString(s, "_")
	return strings.Trim(s, "._")
}

// baseName derives a file base name for a part: the last path segment of its
// Content-Location, the location host when the path has no segment, the
// Content-ID, then the fixed fallback.
func baseName(p Part) string {
	if p.Location != "" {
		if u, err := url.Parse(p.Location); err == nil {
			base := path.Base(u.Path)
			if base == "." || base == "/" {
				base = ""
			}
			if base == "" && u.Host != "" {
				if host, err := sanitize.Domain(u.Host, false, false); err == nil {
					base = host
				} else {
					base = u.Host
				}
			}
			if s := safeName(base); s != "" {
				return s
			}
		}
	}
	if s := safeName(p.ContentID); s != "" {
		return s
	}
	return fallbackBaseName
}

// extensionFor returns the file extension for a content type: the canonical
// table first, then a best-effort guess from the mime database, else "".
func extensionFor(contentType string) string {
	if ext, ok := knownExtensions[contentType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Namer assigns collision-free asset file names in encounter order.
// Colliding names get an incrementing "_N" suffix before the extension.
type Namer struct {
	used map[string]bool
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{used: make(map[string]bool)}
}

// Assign derives and reserves the file name for one part.
func (n *Namer) Assign(p Part) string {
	base := baseName(p)
	ext := extensionFor(p.ContentType)
	name := base + ext
	for i := 1; n.used[name]; i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	n.used[name] = true
	return name
}

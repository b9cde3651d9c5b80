package cssbundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Output file names inside the asset directory.
const (
	BundleName   = "combined.css"
	MinifiedName = "combined.min.css"
	ManifestName = "css-manifest.json"
)

var reCharset = regexp.MustCompile(`@charset\s+"[^"]+";`)

// Minification patterns: strip non-important comments (those opening with
// /*! survive), collapse whitespace, drop spaces around punctuation.
var (
	reComment    = regexp.MustCompile(`/\*[^!][\s\S]*?\*/`)
	reWhitespace = regexp.MustCompile(`\s+`)
	rePunctSpace = regexp.MustCompile(` ?([{};:,]) ?`)
)

// Options configures one bundling run.
type Options struct {
	IndexPath string // document whose <link> order defines the cascade
	AssetDir  string // directory holding the materialized stylesheets
	Minify    bool   // also write combined.min.css
	NoDedupe  bool   // keep whole-file duplicates instead of skipping them
}

// ManifestEntry records one source stylesheet in reference order.
type ManifestEntry struct {
	Href  string `json:"href"`
	Media string `json:"media,omitempty"`
	Order int    `json:"order"`
	Bytes int    `json:"bytes"`
}

// Result lists the files a bundling run wrote. Sources is zero when the
// index document contains no stylesheet links (nothing is written then).
type Result struct {
	BundlePath   string
	MinifiedPath string
	ManifestPath string
	Sources      int
}

type chunk struct {
	href    string
	media   string
	content string
}

// Bundle concatenates every stylesheet the index document links, in link
// order, into one banner-annotated file plus a JSON manifest and an
// optional minified variant.
func Bundle(opts *Options) (*Result, error) {
	raw, err := os.ReadFile(opts.IndexPath) //nolint:gosec // G304: user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	links, err := ExtractLinks(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if len(links) == 0 {
		return &Result{}, nil
	}

	indexDir := filepath.Dir(opts.IndexPath)
	chunks := make([]chunk, 0, len(links))
	manifest := make([]ManifestEntry, 0, len(links))
	for _, link := range links {
		content := loadStylesheet(filepath.Join(indexDir, filepath.FromSlash(link.Href)), link.Href)
		chunks = append(chunks, chunk{href: link.Href, media: link.Media, content: content})
		manifest = append(manifest, ManifestEntry{
			Href:  link.Href,
			Media: link.Media,
			Order: link.Order,
			Bytes: len(content),
		})
	}

	if !opts.NoDedupe {
		chunks = dedupeChunks(chunks)
	}

	combined := assemble(chunks)

	if err := os.MkdirAll(opts.AssetDir, 0750); err != nil {
		return nil, fmt.Errorf("create asset directory: %w", err)
	}
	res := &Result{
		BundlePath:   filepath.Join(opts.AssetDir, BundleName),
		ManifestPath: filepath.Join(opts.AssetDir, ManifestName),
		Sources:      len(chunks),
	}
	if err := os.WriteFile(res.BundlePath, []byte(combined), 0644); err != nil { //nolint:gosec // G306: published output
		return nil, fmt.Errorf("write bundle: %w", err)
	}

	manifestJSON, err := json.MarshalIndent(map[string][]ManifestEntry{"files": manifest}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(res.ManifestPath, manifestJSON, 0644); err != nil { //nolint:gosec // G306: published output
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if opts.Minify {
		res.MinifiedPath = filepath.Join(opts.AssetDir, MinifiedName)
		if err := os.WriteFile(res.MinifiedPath, []byte(Minify(combined)), 0644); err != nil { //nolint:gosec // G306: published output
			return nil, fmt.Errorf("write minified bundle: %w", err)
		}
	}
	return res, nil
}

// loadStylesheet reads one source file; a missing file becomes a traceable
// placeholder comment rather than an error, since the HTML may reference
// stylesheets the snapshot never captured.
func loadStylesheet(path, href string) string {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path derives from the index document
	if err != nil {
		return fmt.Sprintf("/* Missing file referenced in HTML: %s */\n", href)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// dedupeChunks drops whole files whose trimmed content matches an earlier
// file, leaving a reference comment in their slot so order stays traceable.
func dedupeChunks(chunks []chunk) []chunk {
	seen := make(map[string]string)
	out := make([]chunk, 0, len(chunks))
	for _, c := range chunks {
		sum := sha256.Sum256([]byte(strings.TrimSpace(c.content)))
		key := hex.EncodeToString(sum[:])
		if first, ok := seen[key]; ok {
			c.content = fmt.Sprintf("/* Skipped duplicate content: identical to %s */\n", first)
		} else {
			seen[key] = c.href
		}
		out = append(out, c)
	}
	return out
}

// assemble joins the chunks with banner comments, hoisting the first
// @charset declaration and commenting out the rest, and wrapping
// media-qualified sources in @media blocks.
func assemble(chunks []chunk) string {
	var parts []string
	emittedCharset := false
	for _, c := range chunks {
		content := strings.ReplaceAll(c.content, "\r\n", "\n")

		if charsets := reCharset.FindAllString(content, -1); len(charsets) > 0 {
			content = reCharset.ReplaceAllString(content, "")
			if !emittedCharset {
				parts = append(parts, charsets[0])
				emittedCharset = true
			} else {
				parts = append(parts, fmt.Sprintf("/* Duplicate %s removed */", strings.TrimSpace(charsets[0])))
			}
		}

		source := c.href
		if c.media != "" {
			source += fmt.Sprintf(" (media=%s)", c.media)
		}

		body := strings.TrimSpace(content)
		if wrapInMedia(c.media) {
			body = fmt.Sprintf("@media %s {\n%s\n}", c.media, body)
		}
		parts = append(parts, sourceBanner(source, content)+body+"\n")
	}
	return strings.Join(parts, "\n")
}

// sourceBanner renders the per-source annotation so origins stay traceable
// in the combined file.
func sourceBanner(source, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf(`/*====================================================================
 Source: %s
 SHA256: %s
 Size: %d bytes
====================================================================*/
`, source, hex.EncodeToString(sum[:]), len(content))
}

// wrapInMedia reports whether a media qualifier needs an @media wrapper.
// "all" and "screen" match the default rendering context already.
func wrapInMedia(media string) bool {
	switch strings.ToLower(media) {
	case "", "all", "screen":
		return false
	}
	return true
}

// Minify performs light whitespace minification: non-important comments go,
// runs of whitespace collapse, spaces around punctuation disappear.
func Minify(css string) string {
	css = reComment.ReplaceAllString(css, "")
	css = reWhitespace.ReplaceAllString(css, " ")
	css = rePunctSpace.ReplaceAllString(css, "$1")
	return strings.TrimSpace(css)
}

package cssbundle

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// LinkRef is one stylesheet reference read from the index document,
// in head order so the cascade is preserved.
type LinkRef struct {
	Href  string
	Media string
	Order int
}

// ExtractLinks returns every local stylesheet <link> in document order.
// Remote references (scheme or protocol-relative) and non-CSS hrefs are
// skipped; the bundler only concatenates already-materialized files.
func ExtractLinks(r io.Reader) ([]LinkRef, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var refs []LinkRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			var rel, href, media string
			for _, a := range n.Attr {
				switch a.Key {
				case "rel":
					rel = a.Val
				case "href":
					href = a.Val
				case "media":
					media = a.Val
				}
			}
			if strings.EqualFold(strings.TrimSpace(rel), "stylesheet") && isLocalCSS(href) {
				refs = append(refs, LinkRef{
					Href:  href,
					Media: strings.TrimSpace(media),
					Order: len(refs),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// isLocalCSS reports whether href names a local stylesheet file.
func isLocalCSS(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(href), ".css")
}

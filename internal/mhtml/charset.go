package mhtml

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DecodeText decodes data using the declared charset label. Unknown labels
// and decode failures fall back to UTF-8 with lossy replacement, so callers
// always get usable text.
func DecodeText(data []byte, charset string) string {
	if charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil {
			if decoded, _, err := transform.Bytes(enc.NewDecoder(), data); err == nil {
				return string(decoded)
			}
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}

// decodeStylesheet decodes stylesheet bytes as UTF-8, falling back to
// ISO 8859-1 (one byte per character, cannot fail) so no byte sequence
// causes a hard failure.
func decodeStylesheet(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded)
}

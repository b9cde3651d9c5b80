package mhtml

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"
)

// ErrNoDocument is returned when the archive contains no text/html part.
var ErrNoDocument = errors.New("no text/html part found in archive")

// maxNestingDepth bounds the multipart recursion so a malformed archive
// with self-referencing boundaries cannot blow the stack.
const maxNestingDepth = 8

// Part is one typed unit extracted from an MHTML archive.
type Part struct {
	ContentType string // lowercase media type, e.g. "image/png"
	ContentID   string // Content-ID with angle brackets stripped, "" when absent
	Location    string // Content-Location header value, "" when absent
	Charset     string // charset parameter of the Content-Type, "" when absent
	Payload     []byte // transfer-decoded body bytes
}

// Archive is the decomposed form of one MHTML file: the primary document's
// decoded text plus every asset-candidate part in archive order.
type Archive struct {
	Document string
	Parts    []Part
}

// Decompose parses an MHTML byte stream into an Archive. Nested multipart
// containers are flattened depth-first; the containers themselves produce no
// part. The first text/html part becomes the primary document (later HTML
// parts are discarded), untyped and text/plain parts are dropped, and
// everything else becomes an asset candidate.
func Decompose(r io.Reader) (*Archive, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read archive header: %w", err)
	}

	arc := &Archive{}
	found := false
	if err := walkPart(header, tp.R, arc, &found, 0); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoDocument
	}
	return arc, nil
}

// walkPart handles one MIME entity: multipart containers recurse into their
// children, leaf entities are classified and collected.
func walkPart(header textproto.MIMEHeader, body io.Reader, arc *Archive, found *bool, depth int) error {
	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxNestingDepth {
			return nil
		}
		boundary := params["boundary"]
		if boundary == "" {
			return nil
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextRawPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				// Tolerate truncated or sloppy archives: keep what was
				// parsed so far instead of failing the whole run.
				return nil
			}
			if err := walkPart(part.Header, part, arc, found, depth+1); err != nil {
				return err
			}
		}
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read part body: %w", err)
	}
	payload = decodeTransfer(header.Get("Content-Transfer-Encoding"), payload)

	switch {
	case mediaType == "text/html":
		if !*found {
			arc.Document = DecodeText(payload, params["charset"])
			*found = true
		}
		// Later HTML parts are ignored entirely, not materialized.
		return nil
	case mediaType == "" || mediaType == "text/plain":
		return nil
	}

	arc.Parts = append(arc.Parts, Part{
		ContentType: mediaType,
		ContentID:   strings.Trim(strings.TrimSpace(header.Get("Content-ID")), "<>"),
		Location:    strings.TrimSpace(sanitize.SingleLine(header.Get("Content-Location"))),
		Charset:     params["charset"],
		Payload:     payload,
	})
	return nil
}

// decodeTransfer undoes the part's Content-Transfer-Encoding. Undecodable
// content falls back to the raw bytes rather than failing the part.
func decodeTransfer(encoding string, data []byte) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		decoded, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(data)))
		if err != nil {
			return data
		}
		return decoded
	case "quoted-printable":
		decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(data)))
		if err != nil {
			return data
		}
		return decoded
	default:
		// 7bit, 8bit, binary or absent: bytes are already literal.
		return data
	}
}

package mhtml

import (
	"net/url"
	"sort"
	"strings"
)

// cidScheme prefixes identifier keys, matching how MHTML documents
// reference embedded parts ("cid:img1").
const cidScheme = "cid:"

// ReplacementMap maps every addressable form of every materialized asset to
// its local path. Keys are exposed in descending length so a full
// original-location URI is always tried before a bare path that happens to
// be its substring.
type ReplacementMap struct {
	keys  []string
	paths map[string]string
}

// BuildReplacements registers, per asset: the cid: form of its identifier,
// its literal Content-Location, and — when the location's authority matches
// the configured origin — the bare path component of that location.
// Duplicate keys resolve last-writer-wins, so archive part order sets
// precedence.
func BuildReplacements(records []AssetRecord, origin *Origin) *ReplacementMap {
	paths := make(map[string]string)
	for _, rec := range records {
		if rec.ContentID != "" {
			paths[cidScheme+rec.ContentID] = rec.LocalPath
		}
		if rec.Location == "" {
			continue
		}
		paths[rec.Location] = rec.LocalPath

		u, err := url.Parse(rec.Location)
		if err != nil {
			continue
		}
		if (u.Scheme == "http" || u.Scheme == "https") &&
			origin != nil && origin.SameAuthority(u.Host) && u.Path != "" {
			paths[u.Path] = rec.LocalPath
		}
	}

	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	// Longest first; ties broken lexicographically so map iteration order
	// never leaks into the output.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	return &ReplacementMap{keys: keys, paths: paths}
}

// Apply replaces every literal occurrence of every key with its local path,
// one exhaustive pass per key in descending-length order. The pass is not
// re-scanned after substitution.
func (m *ReplacementMap) Apply(text string) string {
	for _, k := range m.keys {
		if strings.Contains(text, k) {
			text = strings.ReplaceAll(text, k, m.paths[k])
		}
	}
	return text
}

// Len returns the number of registered keys.
func (m *ReplacementMap) Len() int {
	return len(m.keys)
}

// Lookup returns the local path registered for key.
func (m *ReplacementMap) Lookup(key string) (string, bool) {
	p, ok := m.paths[key]
	return p, ok
}

// Keys returns the keys in application order.
func (m *ReplacementMap) Keys() []string {
	return m.keys
}

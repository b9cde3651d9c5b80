package mhtml

import (
	"regexp"
	"strings"
)

// Promotion patterns. RE2 has no backreferences, so quoted forms get one
// pattern per quoting style; the quoting of the original text is preserved.
// Each pattern only matches values that start with "/", and the callbacks
// skip "//" (protocol-relative). Substituted local paths are relative and
// never start with "/", so promotion can never re-match text produced by
// the literal-substitution pass.
var (
	reAttrDouble = regexp.MustCompile(`(?i)\b(href|src|action)="(/[^"]*)"`)
	reAttrSingle = regexp.MustCompile(`(?i)\b(href|src|action)='(/[^']*)'`)
	reURLDouble  = regexp.MustCompile(`(?i)url\(\s*"(/[^"]*)"\s*\)`)
	reURLSingle  = regexp.MustCompile(`(?i)url\(\s*'(/[^']*)'\s*\)`)
	reURLBare    = regexp.MustCompile(`(?i)url\(\s*(/[^)'"]+?)\s*\)`)
	reURLEntity  = regexp.MustCompile(`(?i)url\(&quot;(/[^&]+)&quot;\)`)
)

// RewriteDocument applies the full rewrite policy to the primary document:
// literal substitution of every ReplacementMap key first, then promotion of
// remaining root-relative references — in markup attributes and in embedded
// style syntax — to absolute URLs against the origin. Order matters: a
// reference already resolved to a local asset must never be promoted.
func RewriteDocument(text string, repl *ReplacementMap, origin *Origin) string {
	text = repl.Apply(text)
	text = promoteAttrURLs(text, origin)
	text = PromoteStyleURLs(text, origin)
	return text
}

// promoteAttrURLs rewrites href/src/action attribute values that begin with
// a single path separator to origin-absolute URLs, preserving the original
// quote character.
func promoteAttrURLs(text string, origin *Origin) string {
	rewrite := func(re *regexp.Regexp, quote string) {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			sub := re.FindStringSubmatch(match)
			if len(sub) < 3 {
				return match
			}
			if strings.HasPrefix(sub[2], "//") {
				return match
			}
			return sub[1] + "=" + quote + origin.URL + sub[2] + quote
		})
	}
	rewrite(reAttrDouble, `"`)
	rewrite(reAttrSingle, `'`)
	return text
}

// PromoteStyleURLs rewrites root-relative url(...) references to
// origin-absolute URLs. Handles double-quoted, single-quoted and bare
// forms, plus the &quot;-entity quoting that appears inside HTML style
// attributes.
func PromoteStyleURLs(text string, origin *Origin) string {
	for _, re := range []*regexp.Regexp{reURLDouble, reURLSingle, reURLBare, reURLEntity} {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			sub := re.FindStringSubmatch(match)
			if len(sub) < 2 {
				return match
			}
			ref := sub[1]
			if strings.HasPrefix(ref, "//") {
				return match
			}
			return strings.Replace(match, ref, origin.URL+ref, 1)
		})
	}
	return text
}

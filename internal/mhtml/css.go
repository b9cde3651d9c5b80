package mhtml

// RewriteStylesheet rewrites one materialized stylesheet in place: decode
// (UTF-8, falling back to ISO 8859-1), literal substitution, root-relative
// url(...) promotion, then write back as UTF-8. Errors are returned for the
// caller to log and ignore — stylesheet rewriting is best-effort
// post-processing and must not abort the run.
func RewriteStylesheet(store Storage, name string, repl *ReplacementMap, origin *Origin) error {
	data, err := store.Get(name)
	if err != nil {
		return err
	}
	text := decodeStylesheet(data)
	text = repl.Apply(text)
	text = PromoteStyleURLs(text, origin)
	return store.PutBytes(name, []byte(text))
}

package mhtml

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Config holds all runtime configuration for one conversion.
type Config struct {
	InputPath  string
	OutputPath string
	AssetDir   string
	Origin     *Origin
	Threads    int
	Progress   bool
	Debug      bool
	Storage    Storage // if nil, NewLocalStorage(AssetDir) is used
}

// Result describes the persisted outputs of one conversion.
type Result struct {
	DocumentPath string
	AssetDir     string
	Assets       []AssetRecord
}

// Convert runs the full pipeline: decompose the archive, materialize every
// asset, build the replacement map, rewrite the document, then rewrite each
// stylesheet in place. It aborts on a missing HTML part or a failed asset
// write; stylesheet rewriting is best-effort.
func Convert(cfg *Config) (*Result, error) {
	inputPath, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	outputPath, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	assetDir, err := filepath.Abs(cfg.AssetDir)
	if err != nil {
		return nil, fmt.Errorf("resolve asset directory: %w", err)
	}

	data, err := os.ReadFile(inputPath) //nolint:gosec // G304: user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	arc, err := Decompose(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompose %s: %w", filepath.Base(inputPath), err)
	}

	store := cfg.Storage
	if store == nil {
		store = NewLocalStorage(assetDir)
	}

	var prog *Progress
	if cfg.Progress {
		prog = NewExtractProgress(len(arc.Parts))
	}
	records, err := materializeAll(arc.Parts, outputPath, assetDir, cfg, store, prog)
	prog.Finish()
	if err != nil {
		return nil, err
	}

	repl := BuildReplacements(records, cfg.Origin)
	doc := RewriteDocument(arc.Document, repl, cfg.Origin)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(doc), 0644); err != nil { //nolint:gosec // G306: published output
		return nil, fmt.Errorf("write document: %w", err)
	}

	rewriteStylesheets(records, repl, cfg, store)

	return &Result{
		DocumentPath: outputPath,
		AssetDir:     assetDir,
		Assets:       records,
	}, nil
}

// materializeAll assigns file names sequentially — encounter order fixes the
// collision suffixes — then writes all payloads through the worker pool.
// Every write completes (or the first failure aborts) before this returns,
// so the resolver always sees a fully materialized asset set.
func materializeAll(parts []Part, outputPath, assetDir string, cfg *Config, store Storage, prog *Progress) ([]AssetRecord, error) {
	namer := NewNamer()
	outDir := ToPosix(filepath.Dir(outputPath))
	records := make([]AssetRecord, len(parts))
	for i, p := range parts {
		name := namer.Assign(p)
		records[i] = AssetRecord{
			ContentType: p.ContentType,
			Name:        name,
			LocalPath:   RelativeLink(outDir, ToPosix(filepath.Join(assetDir, name))),
			ContentID:   p.ContentID,
			Location:    p.Location,
		}
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = 1
	}
	pool, err := ants.NewPool(threads)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	g, ctx := errgroup.WithContext(context.Background())
	for i := range parts {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errCh := make(chan error, 1)
			if err := pool.Submit(func() {
				errCh <- store.Put(records[i].Name, bytes.NewReader(parts[i].Payload))
			}); err != nil {
				return fmt.Errorf("submit task: %w", err)
			}
			if err := <-errCh; err != nil {
				return fmt.Errorf("write asset %s: %w", records[i].Name, err)
			}
			prog.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// rewriteStylesheets post-processes every materialized CSS asset. A failure
// leaves that one file untouched and the run proceeds.
func rewriteStylesheets(records []AssetRecord, repl *ReplacementMap, cfg *Config, store Storage) {
	var sheets []AssetRecord
	for _, rec := range records {
		if rec.ContentType == "text/css" {
			sheets = append(sheets, rec)
		}
	}
	if len(sheets) == 0 {
		return
	}

	var prog *Progress
	if cfg.Progress {
		prog = NewRewriteProgress(len(sheets))
	}
	for _, rec := range sheets {
		if err := RewriteStylesheet(store, rec.Name, repl, cfg.Origin); err != nil && cfg.Debug {
			log.Printf("rewrite %s: %v", rec.Name, err)
		}
		prog.Inc()
	}
	prog.Finish()
}

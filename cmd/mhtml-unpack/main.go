package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sigman78/mhtml-unpack/internal/mhtml"
)

// defaultOrigin is the host the snapshot was captured from; root-relative
// references that resolve to no embedded part are promoted against it.
const defaultOrigin = "https://data.seattle.gov"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: mhtml-unpack <input.mhtml> [output.html] [assets-dir] [options]

Arguments:
  input.mhtml             MHTML archive to convert (required)
  output.html             Output document path (default: input with .html extension)
  assets-dir              Directory for extracted assets (default: assets)

Options:
  -origin string          Origin for root-relative URL promotion (default: %s)
  -threads int            Concurrent asset writes (default: 3)
  -no-progress            Disable the progress bars
  -debug                  Enable verbose debug logging
  -version                Print version and exit
  -h / -help              Show this help and exit
`, defaultOrigin)
}

func main() {
	// Use ContinueOnError so we can intercept ErrHelp and unknown-flag errors
	// and control the exit code ourselves.
	fs := flag.NewFlagSet("mhtml-unpack", flag.ContinueOnError)
	fs.Usage = usage

	var (
		originFlag string
		threads    int
		noProgress bool
		debug      bool
	)

	fs.StringVar(&originFlag, "origin", defaultOrigin, "Origin for root-relative URL promotion")
	fs.IntVar(&threads, "threads", 3, "Concurrent asset writes")
	fs.BoolVar(&noProgress, "no-progress", false, "Disable the progress bars")
	fs.BoolVar(&debug, "debug", false, "Enable verbose debug logging")

	// Handle -version / -h / -help before the flag parser so we control the exit code.
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			fmt.Printf("mhtml-unpack %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		}
		if a == "-h" || a == "-help" || a == "--help" {
			usage()
			os.Exit(0)
		}
	}

	// Extract leading positional arguments before flag parsing so that
	// "mhtml-unpack page.mhtml out.html assets -debug" works (the stdlib
	// flag package stops at the first non-flag argument).
	args := os.Args[1:]
	var positional []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}

	if err := fs.Parse(args); err != nil {
		// Unknown/malformed flag: fs already printed the error message
		os.Exit(2)
	}
	positional = append(positional, fs.Args()...)

	if len(positional) < 1 || len(positional) > 3 {
		usage()
		os.Exit(2)
	}

	if threads <= 0 {
		fmt.Fprintln(os.Stderr, "error: -threads must be greater than 0")
		os.Exit(1)
	}

	origin, err := mhtml.NormalizeOrigin(originFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid origin: %v\n", err)
		os.Exit(1)
	}

	input := positional[0]
	output := strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
	if len(positional) >= 2 {
		output = positional[1]
	}
	assetDir := "assets"
	if len(positional) >= 3 {
		assetDir = positional[2]
	}

	cfg := &mhtml.Config{
		InputPath:  input,
		OutputPath: output,
		AssetDir:   assetDir,
		Origin:     origin,
		Threads:    threads,
		Progress:   !noProgress,
		Debug:      debug,
	}

	res, err := mhtml.Convert(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\nAssets in %s\n", res.DocumentPath, res.AssetDir)
}

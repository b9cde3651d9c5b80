package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sigman78/mhtml-unpack/internal/cssbundle"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: css-bundle [index.html] [assets-dir] [options]

Concatenates every local stylesheet the index document links, in link
order, into <assets-dir>/combined.css with per-source banner comments,
plus a css-manifest.json listing each source's order and size.

Arguments:
  index.html              Document whose <link> tags define the order (default: index.html)
  assets-dir              Directory holding the stylesheets (default: assets)

Options:
  -minify                 Also write combined.min.css
  -no-dedupe              Keep duplicate whole-file contents
  -h / -help              Show this help and exit
`)
}

func main() {
	fs := flag.NewFlagSet("css-bundle", flag.ContinueOnError)
	fs.Usage = usage

	var (
		minify   bool
		noDedupe bool
	)
	fs.BoolVar(&minify, "minify", false, "Also write combined.min.css")
	fs.BoolVar(&noDedupe, "no-dedupe", false, "Keep duplicate whole-file contents")

	for _, a := range os.Args[1:] {
		if a == "-h" || a == "-help" || a == "--help" {
			usage()
			os.Exit(0)
		}
	}

	args := os.Args[1:]
	var positional []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	positional = append(positional, fs.Args()...)
	if len(positional) > 2 {
		usage()
		os.Exit(2)
	}

	opts := &cssbundle.Options{
		IndexPath: "index.html",
		AssetDir:  "assets",
		Minify:    minify,
		NoDedupe:  noDedupe,
	}
	if len(positional) >= 1 {
		opts.IndexPath = positional[0]
	}
	if len(positional) >= 2 {
		opts.AssetDir = positional[1]
	}

	res, err := cssbundle.Bundle(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if res.Sources == 0 {
		fmt.Println(`No CSS <link rel="stylesheet"> tags found.`)
		return
	}

	fmt.Printf("Wrote %s from %d source files.\n", res.BundlePath, res.Sources)
	fmt.Printf("Wrote manifest %s\n", res.ManifestPath)
	if res.MinifiedPath != "" {
		fmt.Printf("Wrote %s\n", res.MinifiedPath)
	}
}

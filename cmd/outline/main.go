// Command outline prints the title and heading outline of documents.
//
// Usage:
//
//	outline guide.pdf                    # print the outline JSON
//	outline -out results/ a.pdf b.docx   # write results/a.json, results/b.json
//	outline -sections "" guide.pdf       # disable required-section injection
//	outline -pages guide.pdf             # dump the page text model
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
)

type options struct {
	outDir   string
	pages    bool
	legacy   bool
	document extract.Options
}

func main() {
	cfg := config.Load()

	rulesPath := flag.String("rules", cfg.RulesPath, "path to a YAML rules file")
	outDir := flag.String("out", "", "write <name>.json per input into this directory instead of stdout")
	sections := flag.String("sections", "", "comma-separated required section labels (empty disables injection)")
	strategies := flag.String("strategies", "", "comma-separated heading strategy order")
	pages := flag.Bool("pages", false, "dump the page text model and exit")
	legacy := flag.Bool("legacy-whitespace", cfg.LegacyWhitespace, "emit trailing spaces on title and headings")
	noRescue := flag.Bool("no-rescue", false, "disable the OCR rescue step")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: outline [flags] FILE...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	rules, err := config.LoadRules(*rulesPath)
	if err != nil {
		logger.Error("outline: rules", "error", err)
		os.Exit(1)
	}
	if *noRescue {
		cfg.RescueEnabled = false
	}

	opts := options{outDir: *outDir, pages: *pages, legacy: *legacy}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sections":
			opts.document.RequiredSections = config.SplitLabels(*sections)
		case "strategies":
			for _, s := range config.SplitLabels(*strategies) {
				opts.document.Strategies = append(opts.document.Strategies, strings.ToLower(s))
			}
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := extract.NewFromConfig(cfg, rules, logger)
	if err != nil {
		logger.Error("outline: init", "error", err)
		os.Exit(1)
	}

	// A failed document is reported and skipped; the rest still run.
	failed := 0
	for _, path := range flag.Args() {
		if err := run(ctx, engine, path, opts, os.Stdout); err != nil {
			logger.Error("outline: document failed", "file", path, "error", err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, engine *extract.Engine, path string, opts options, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	var v any
	if opts.pages {
		doc, err := engine.Parse(ctx, data, name)
		if err != nil {
			return err
		}
		v = doc
	} else {
		res, err := engine.Extract(ctx, data, name, opts.document)
		if err != nil {
			return err
		}
		if opts.legacy {
			*res = res.WithLegacySpacing()
		}
		v = res
	}

	if opts.outDir == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(opts.outDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, append(b, '\n'), 0o644)
}

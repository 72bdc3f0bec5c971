// Package extract runs the outline pipeline for one document:
// parse, title, classify, reconcile, rescue.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/docoutline/internal/heading"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/reconcile"
	"github.com/dgallion1/docoutline/internal/rescue"
	"github.com/dgallion1/docoutline/internal/title"
)

// Phase names a pipeline step, reported through Options.OnPhase.
type Phase string

const (
	PhaseParsing     Phase = "parsing"
	PhaseClassifying Phase = "classifying"
	PhaseReconciling Phase = "reconciling"
	PhaseRescuing    Phase = "rescuing"
)

// Config holds engine-wide settings.
type Config struct {
	Strategies        []string // heading strategy priority; empty means heading.DefaultOrder
	DropTitleEchoes   bool
	FallbackPdftotext bool
}

// Options are per-document overrides.
type Options struct {
	// RequiredSections replaces the configured labels when non-nil.
	RequiredSections []string
	// Strategies replaces the configured strategy order when non-empty.
	Strategies []string
	// DropTitleEchoes overrides the configured setting when non-nil.
	DropTitleEchoes *bool
	// OnPhase, if set, is called as each step starts.
	OnPhase func(Phase)
}

// Engine extracts outlines. It holds no per-document state and is safe for
// concurrent use.
type Engine struct {
	cfg        Config
	pdf        *parser.PDFParser
	titles     title.Detector
	classifier *heading.Classifier
	reconciler *reconcile.Reconciler
	rescuer    *rescue.Rescuer
	stats      *LatencyStats
	log        *slog.Logger
}

// NewEngine wires an engine. rescuer and stats may be nil.
func NewEngine(cfg Config, reconciler *reconcile.Reconciler, rescuer *rescue.Rescuer, stats *LatencyStats, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	classifier, err := heading.NewClassifier(cfg.Strategies, log)
	if err != nil {
		return nil, fmt.Errorf("heading strategies: %w", err)
	}
	if reconciler == nil {
		reconciler = reconcile.New(reconcile.Config{}, nil, log)
	}
	return &Engine{
		cfg:        cfg,
		pdf:        &parser.PDFParser{FallbackPdftotext: cfg.FallbackPdftotext, Log: log},
		classifier: classifier,
		reconciler: reconciler,
		rescuer:    rescuer,
		stats:      stats,
		log:        log,
	}, nil
}

// Stats returns the engine's latency stats, or nil.
func (e *Engine) Stats() *LatencyStats { return e.stats }

// Extract returns the title and outline of one document. Only unreadable or
// unsupported input is an error; a missing title or an empty outline is a
// valid result.
func (e *Engine) Extract(ctx context.Context, data []byte, filename string, opts Options) (*outline.Result, error) {
	start := time.Now()
	phase := func(p Phase) {
		if opts.OnPhase != nil {
			opts.OnPhase(p)
		}
	}

	phase(PhaseParsing)
	doc, pdfPath, cleanup, err := e.parse(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	t, src := e.titles.Resolve(doc)

	phase(PhaseClassifying)
	classifier := e.classifier
	if len(opts.Strategies) > 0 {
		classifier, err = heading.NewClassifier(opts.Strategies, e.log)
		if err != nil {
			return nil, fmt.Errorf("heading strategies: %w", err)
		}
	}
	raw, strategy := classifier.Classify(doc.Pages)

	phase(PhaseReconciling)
	dropEchoes := e.cfg.DropTitleEchoes
	if opts.DropTitleEchoes != nil {
		dropEchoes = *opts.DropTitleEchoes
	}
	out := e.reconciler.Reconcile(ctx, raw, doc.Pages, reconcile.Options{
		RequiredSections: opts.RequiredSections,
		Title:            t,
		DropTitleEchoes:  dropEchoes,
	})

	rescued := false
	if pdfPath != "" && rescue.NeedsRescue(out) && e.rescuer.Enabled() {
		phase(PhaseRescuing)
		out, rescued = e.rescuer.Apply(ctx, pdfPath, out)
	}

	elapsed := time.Since(start)
	if e.stats != nil {
		e.stats.Record(elapsed, strategy, rescued)
	}
	e.log.Info("outline extracted",
		"file", filename,
		"pages", len(doc.Pages),
		"title_source", string(src),
		"strategy", strategy,
		"headings", len(out),
		"rescued", rescued,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &outline.Result{Title: t, Outline: out}, nil
}

// Parse reads data into the page text model without running the pipeline.
func (e *Engine) Parse(ctx context.Context, data []byte, filename string) (*pagetext.Document, error) {
	doc, _, cleanup, err := e.parse(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	cleanup()
	return doc, nil
}

// parse returns the document and, for PDFs, the path of a temp copy that
// stays valid until cleanup is called.
func (e *Engine) parse(ctx context.Context, data []byte, filename string) (*pagetext.Document, string, func(), error) {
	noop := func() {}
	format, ok := parser.FormatOf(filename)
	if !ok {
		return nil, "", noop, fmt.Errorf("%w: %s", parser.ErrUnsupported, filename)
	}

	if format != pagetext.FormatPDF {
		p, err := parser.ForFile(filename)
		if err != nil {
			return nil, "", noop, err
		}
		doc, err := p.Parse(bytes.NewReader(data), filename)
		if err != nil {
			return nil, "", noop, fmt.Errorf("parse %s: %w", filename, err)
		}
		return doc, "", noop, nil
	}

	tmp, err := os.CreateTemp("", "outline-*.pdf")
	if err != nil {
		return nil, "", noop, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return nil, "", noop, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := e.pdf.ParseFile(ctx, path, filename)
	if err != nil {
		cleanup()
		return nil, "", noop, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, path, cleanup, nil
}

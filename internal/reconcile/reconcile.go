// Package reconcile turns raw classifier output into the final outline:
// required sections are injected, near-duplicates are dropped and the result
// is ordered by (page, text).
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	DefaultThreshold    = 0.95
	DefaultSectionPages = 3
)

// DefaultRequiredSections are the administrative sections probed for when no
// labels are configured.
var DefaultRequiredSections = []string{"Revision History", "Acknowledgements"}

// Config holds process-wide reconciliation settings.
type Config struct {
	RequiredSections []string
	SectionPages     int     // how many leading pages are probed for labels
	Threshold        float64 // cosine similarity at or above which a heading is a duplicate
}

// Options are per-document overrides.
type Options struct {
	// RequiredSections replaces the configured labels when non-nil. A non-nil
	// empty slice disables injection.
	RequiredSections []string

	// Title, with DropTitleEchoes, removes headings that repeat the title.
	Title           string
	DropTitleEchoes bool
}

// Reconciler merges and de-duplicates heading candidates.
type Reconciler struct {
	cfg Config
	emb embed.Embedder
	log *slog.Logger
}

// New creates a Reconciler. A nil embedder selects the local hashing embedder.
func New(cfg Config, emb embed.Embedder, log *slog.Logger) *Reconciler {
	if cfg.RequiredSections == nil {
		cfg.RequiredSections = DefaultRequiredSections
	}
	if cfg.SectionPages <= 0 {
		cfg.SectionPages = DefaultSectionPages
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultThreshold
	}
	if emb == nil {
		emb = embed.NewHashing(embed.DefaultDimension)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{cfg: cfg, emb: emb, log: log}
}

// Reconcile returns the final outline for raw. raw itself is never modified.
// The result is non-nil, sorted by (page, text) and free of pairs whose
// embeddings are at least Threshold similar.
func (r *Reconciler) Reconcile(ctx context.Context, raw outline.Outline, pages []pagetext.Page, opts Options) outline.Outline {
	out := outline.Filter(raw)
	for i := range out {
		out[i].Text = outline.CleanText(out[i].Text)
	}

	labels := r.cfg.RequiredSections
	if opts.RequiredSections != nil {
		labels = opts.RequiredSections
	}
	out = injectRequired(out, pages, labels, r.cfg.SectionPages)

	if opts.DropTitleEchoes {
		out = dropTitleEchoes(out, opts.Title)
	}

	outline.Sort(out)
	out = r.dedup(ctx, out)
	outline.Sort(out)
	return out
}

// injectRequired appends an H1 for every label that occurs in the first
// maxPages pages but is not already a heading. Each label is added once, at
// the first page where it appears.
func injectRequired(out outline.Outline, pages []pagetext.Page, labels []string, maxPages int) outline.Outline {
	if len(labels) == 0 {
		return out
	}
	found := make(map[string]bool, len(out))
	for _, h := range out {
		found[strings.ToLower(h.Text)] = true
	}
	for i, p := range pages {
		if i >= maxPages {
			break
		}
		for _, l := range p.Lines {
			line := strings.ToLower(l.Text)
			for _, label := range labels {
				label = strings.TrimSpace(label)
				key := strings.ToLower(label)
				if key == "" || found[key] || !strings.Contains(line, key) {
					continue
				}
				out = append(out, outline.Heading{Level: outline.H1, Text: label, Page: max(p.Index, 0)})
				found[key] = true
			}
		}
	}
	return out
}

func dropTitleEchoes(out outline.Outline, title string) outline.Outline {
	key := strings.ToLower(strings.Join(strings.Fields(title), " "))
	if key == "" {
		return out
	}
	kept := out[:0]
	for _, h := range out {
		if strings.ToLower(h.Text) != key {
			kept = append(kept, h)
		}
	}
	return kept
}

// dedup keeps the first heading and every later heading whose similarity to
// all kept headings is below the threshold. When embeddings are unavailable it
// falls back to exact case-insensitive text matching.
func (r *Reconciler) dedup(ctx context.Context, out outline.Outline) outline.Outline {
	if len(out) < 2 {
		return out
	}
	texts := make([]string, len(out))
	for i, h := range out {
		texts[i] = h.Text
	}
	vecs, err := r.emb.EmbedBatch(ctx, texts)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	if err != nil {
		r.log.Warn("embedding failed, using exact-text dedup", "model", r.emb.Model(), "error", err)
		return dedupExact(out)
	}

	kept := outline.Outline{out[0]}
	keptVecs := [][]float32{vecs[0]}
	for i := 1; i < len(out); i++ {
		if r.isDuplicate(vecs[i], keptVecs) {
			r.log.Debug("dropped near-duplicate heading", "text", out[i].Text, "page", out[i].Page)
			continue
		}
		kept = append(kept, out[i])
		keptVecs = append(keptVecs, vecs[i])
	}
	return kept
}

func (r *Reconciler) isDuplicate(vec []float32, kept [][]float32) bool {
	for _, k := range kept {
		if embed.Cosine(vec, k) >= r.cfg.Threshold {
			return true
		}
	}
	return false
}

func dedupExact(out outline.Outline) outline.Outline {
	seen := make(map[string]bool, len(out))
	kept := make(outline.Outline, 0, len(out))
	for _, h := range out {
		key := strings.ToLower(h.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, h)
	}
	return kept
}

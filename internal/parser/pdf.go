package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	defaultPageHeight = 792.0 // US Letter, used when MediaBox is unreadable
	baselineTolerance = 1.0
	wordGapRatio      = 0.2 // glyph gap, as a fraction of font size, that splits words
)

// pdfcpu only needs its built-in defaults; its config dir is never created.
func init() {
	api.DisableConfigDir()
}

// PDFParser handles PDF files. It reads positioned glyphs with the Go
// library first, then falls back to pdftotext (lines only) if enabled.
// Document info comes from pdfcpu.
type PDFParser struct {
	FallbackPdftotext bool
	Log               *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*pagetext.Document, error) {
	// ledongthuc/pdf requires a file, so we write to a temp file.
	tmp, err := os.CreateTemp("", "outline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()
	return p.ParseFile(context.Background(), tmpPath, filename)
}

// ParseFile reads the PDF at path. filename is the name reported to callers.
func (p *PDFParser) ParseFile(ctx context.Context, path, filename string) (*pagetext.Document, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	doc := &pagetext.Document{Filename: filename, Format: pagetext.FormatPDF}
	info, err := readPDFInfo(path)
	if err != nil {
		log.Debug("pdf info unavailable", "file", filename, "error", err)
	} else {
		doc.Metadata = info
	}

	pages, err := readPDFPages(path)
	if err == nil && !hasText(pages) && p.FallbackPdftotext {
		err = fmt.Errorf("no text layer")
	}
	if err != nil && p.FallbackPdftotext {
		log.Info("falling back to pdftotext", "file", filename, "error", err)
		pages, err = readPdftotextPages(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	doc.Pages = pages
	return doc, nil
}

// readPDFInfo returns the document info dictionary fields we use.
func readPDFInfo(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	info := map[string]string{}
	if t := strings.TrimSpace(ctx.Title); t != "" {
		info["Title"] = t
	}
	if a := strings.TrimSpace(ctx.Author); a != "" {
		info["Author"] = a
	}
	info["PageCount"] = strconv.Itoa(ctx.PageCount)
	return info, nil
}

func readPDFPages(path string) (pages []pagetext.Page, err error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, pagetext.NewPage(i-1, nil, nil))
			continue
		}
		words := glyphsToWords(page.Content().Text, pageHeight(page))
		var lines []string
		for _, l := range pagetext.ClusterLines(words, pagetext.DefaultLineTolerance) {
			lines = append(lines, l.Text())
		}
		pages = append(pages, pagetext.NewPage(i-1, lines, words))
	}
	return pages, nil
}

// pageHeight reads the MediaBox, which pages may inherit from their parents.
func pageHeight(page pdflib.Page) float64 {
	var box pdflib.Value
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		if b := v.Key("MediaBox"); !b.IsNull() {
			box = b
			break
		}
	}
	if box.Len() < 4 {
		return defaultPageHeight
	}
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

// glyphsToWords merges positioned glyph runs into words. A word ends at
// whitespace, a baseline change, a font size change, or a horizontal gap
// wider than wordGapRatio of the font size. Top is measured from the page top.
func glyphsToWords(glyphs []pdflib.Text, height float64) []pagetext.WordToken {
	var words []pagetext.WordToken
	var cur strings.Builder
	var start, last pdflib.Text
	flush := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text == "" {
			return
		}
		words = append(words, pagetext.WordToken{
			Text:     text,
			X0:       start.X,
			Top:      height - start.Y - start.FontSize,
			FontSize: start.FontSize,
			FontName: start.Font,
		})
	}

	for _, g := range glyphs {
		if cur.Len() > 0 {
			gap := g.X - (last.X + last.W)
			if math.Abs(g.Y-last.Y) > baselineTolerance ||
				g.FontSize != last.FontSize ||
				gap > wordGapRatio*g.FontSize || gap < -g.FontSize {
				flush()
			}
		}
		for _, r := range g.S {
			if unicode.IsSpace(r) {
				flush()
				continue
			}
			if cur.Len() == 0 {
				start = g
			}
			cur.WriteRune(r)
		}
		last = g
	}
	flush()

	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Top != words[j].Top {
			return words[i].Top < words[j].Top
		}
		return words[i].X0 < words[j].X0
	})
	return words
}

func hasText(pages []pagetext.Page) bool {
	for _, p := range pages {
		if len(p.Lines) > 0 {
			return true
		}
	}
	return false
}

// readPdftotextPages runs poppler's pdftotext; pages are split on form feeds.
func readPdftotextPages(ctx context.Context, path string) ([]pagetext.Page, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	raw := strings.Split(string(out), "\f")
	// pdftotext terminates every page with a form feed.
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make([]pagetext.Page, 0, len(raw))
	for i, text := range raw {
		pages = append(pages, pagetext.NewPage(i, strings.Split(text, "\n"), nil))
	}
	return pages, nil
}

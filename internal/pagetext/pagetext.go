package pagetext

import (
	"path/filepath"
	"strings"
)

// Format identifies the source format a Document was read from.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Document is the normalized, per-run view of a source file.
type Document struct {
	Filename string            `json:"filename"` // Original filename (used for the title fallback)
	Format   Format            `json:"format"`
	Metadata map[string]string `json:"metadata,omitempty"` // Document info dictionary (e.g. "Title")
	Pages    []Page            `json:"pages"`
}

// Page holds the three parallel views of one page.
type Page struct {
	Index     int         `json:"index"`           // 0-based
	Lines     []Line      `json:"lines"`           // Raw text lines in reading order
	Words     []WordToken `json:"words,omitempty"` // Positioned tokens (empty when the source has no geometry)
	Sentences []string    `json:"sentences"`
}

// Line is a single text line and the page it came from.
type Line struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// WordToken is a word with its position and font metrics.
// Top grows downward from the top edge of the page.
type WordToken struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	Top      float64 `json:"top"`
	FontSize float64 `json:"font_size"`
	FontName string  `json:"font_name,omitempty"`
}

// Stem returns the filename without directory or extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Filename)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MetadataTitle returns the trimmed Title metadata field, if any.
func (d *Document) MetadataTitle() string {
	if d.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(d.Metadata["Title"])
}

// FirstPage returns the first page, or nil for an empty document.
func (d *Document) FirstPage() *Page {
	if len(d.Pages) == 0 {
		return nil
	}
	return &d.Pages[0]
}

// LineTexts returns the page's line texts.
func (p *Page) LineTexts() []string {
	out := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = l.Text
	}
	return out
}

// Text returns the page's lines joined by newlines.
func (p *Page) Text() string {
	return strings.Join(p.LineTexts(), "\n")
}

// NewPage builds a page from line texts, dropping blank lines and filling the sentence view.
func NewPage(index int, lines []string, words []WordToken) Page {
	p := Page{Index: index, Words: words}
	for _, l := range lines {
		l = CleanLine(l)
		if l == "" {
			continue
		}
		p.Lines = append(p.Lines, Line{Text: l, Page: index})
	}
	p.Sentences = SplitSentences(strings.Join(p.LineTexts(), " "))
	return p
}

package parser

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// Synthetic point sizes for formats without geometry. They sit inside the
// font-size strategy brackets for H1, H2 and H3; body text and deeper
// headings fall below the H3 cutoff.
const (
	bodySize    = 11.0
	deepSize    = 12.0
	margin      = 72.0
	lineSpacing = 1.5
)

var headingSizes = map[int]float64{1: 24, 2: 18, 3: 14}

// headingSize returns the synthetic font size for heading level n (1-based).
func headingSize(n int) float64 {
	if s, ok := headingSizes[n]; ok {
		return s
	}
	return deepSize
}

// pageBuilder lays out lines top to bottom on one synthetic page.
type pageBuilder struct {
	index int
	lines []string
	words []pagetext.WordToken
	top   float64
}

func newPageBuilder(index int) *pageBuilder {
	return &pageBuilder{index: index, top: margin}
}

// add appends text as one line per newline-separated segment.
func (b *pageBuilder) add(text string, size float64) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.lines = append(b.lines, line)
		x := margin
		for _, w := range strings.Fields(line) {
			b.words = append(b.words, pagetext.WordToken{
				Text:     w,
				X0:       x,
				Top:      b.top,
				FontSize: size,
				FontName: "synthetic",
			})
			x += float64(len([]rune(w))+1) * size * 0.5
		}
		b.top += size * lineSpacing
	}
}

func (b *pageBuilder) empty() bool { return len(b.lines) == 0 }

func (b *pageBuilder) page() pagetext.Page {
	return pagetext.NewPage(b.index, b.lines, b.words)
}

package heading

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const maxFontHeadingLen = 200

// FontSizeStrategy ranks visual lines by their mean font size.
// Page convention: the index of the page being scanned.
type FontSizeStrategy struct {
	Tolerance float64 // vertical clustering tolerance in points
}

func (FontSizeStrategy) Name() string { return NameFontSize }

func (s FontSizeStrategy) Classify(pages []pagetext.Page) outline.Outline {
	tol := s.Tolerance
	if tol <= 0 {
		tol = pagetext.DefaultLineTolerance
	}
	var out outline.Outline
	for _, p := range pages {
		for _, line := range pagetext.ClusterLines(p.Words, tol) {
			text := strings.TrimSpace(line.Text())
			if text == "" || len([]rune(text)) >= maxFontHeadingLen {
				continue
			}
			level, ok := fontSizeLevel(line.MeanFontSize())
			if !ok {
				continue
			}
			out = append(out, outline.Heading{Level: level, Text: text, Page: p.Index})
		}
	}
	return out
}

// fontSizeLevel maps a mean font size in points to a heading level.
func fontSizeLevel(size float64) (outline.Level, bool) {
	switch {
	case size > 20:
		return outline.H1, true
	case size > 15:
		return outline.H2, true
	case size > 12:
		return outline.H3, true
	default:
		return outline.LevelUnknown, false
	}
}

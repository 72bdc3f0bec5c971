package heading

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	maxCasingHeadingLen = 100
	defaultLinesPerPage = 50
)

// CasingStrategy treats every short line as a heading and ranks it by casing.
// Page convention: global line index divided by LinesPerPage, a coarse
// approximation that ignores true page boundaries. Whether real pages should
// be used instead is pending product review. Pages hold no blank lines, so
// only non-empty lines are counted and pages land earlier on sparse text.
type CasingStrategy struct {
	LinesPerPage int
}

func (CasingStrategy) Name() string { return NameCasing }

func (s CasingStrategy) Classify(pages []pagetext.Page) outline.Outline {
	var out outline.Outline
	idx := 0
	for _, p := range pages {
		for _, l := range p.Lines {
			lineIdx := idx
			idx++
			text := strings.TrimSpace(l.Text)
			if text == "" || len([]rune(text)) >= maxCasingHeadingLen {
				continue
			}
			out = append(out, outline.Heading{
				Level: casingLevel(text),
				Text:  text,
				Page:  s.approxPageForLine(lineIdx),
			})
		}
	}
	return out
}

func (s CasingStrategy) approxPageForLine(lineIdx int) int {
	n := s.LinesPerPage
	if n <= 0 {
		n = defaultLinesPerPage
	}
	return lineIdx / n
}

func casingLevel(text string) outline.Level {
	switch {
	case isUpper(text):
		return outline.H1
	case isTitleCase(text):
		return outline.H2
	default:
		return outline.H3
	}
}

// isUpper reports whether text has at least one cased letter and no lowercase ones.
func isUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// isTitleCase reports whether every cased word starts with an uppercase letter
// followed only by lowercase ones. Uppercase letters may only follow uncased
// characters and lowercase letters may only follow cased ones.
func isTitleCase(text string) bool {
	cased := false
	prevCased := false
	for _, r := range text {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased = true
			cased = true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
			cased = true
		default:
			prevCased = false
		}
	}
	return cased
}

package heading

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const structuralPages = 3

var bannerLineRe = regexp.MustCompile(`^[A-Z0-9\s\-]{6,}$`)

// contactWords are banner first words that introduce contact details, not sections.
var contactWords = map[string]bool{
	"ADDRESS": true,
	"PHONE":   true,
	"EMAIL":   true,
	"CONTACT": true,
}

// StructuralStrategy looks for a single all-caps banner line on the first pages,
// the typical shape of flyers and posters.
// Page convention: the index of the page being scanned.
type StructuralStrategy struct{}

func (StructuralStrategy) Name() string { return NameStructural }

func (StructuralStrategy) Classify(pages []pagetext.Page) outline.Outline {
	for i, p := range pages {
		if i >= structuralPages {
			break
		}
		for _, line := range pagetext.GroupByRoundedTop(p.Words) {
			text := strings.TrimSpace(line.Text())
			if !bannerLineRe.MatchString(text) {
				continue
			}
			first := strings.ToUpper(strings.TrimRight(strings.Fields(text)[0], ":"))
			if contactWords[first] {
				continue
			}
			return outline.Outline{{Level: outline.H1, Text: text, Page: p.Index}}
		}
	}
	return nil
}

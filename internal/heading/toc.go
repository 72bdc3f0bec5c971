package heading

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	maxTOCWords        = 25
	shortTOCHeadingLen = 15
	maxWrappedLines    = 2
)

var (
	tocTailRe   = regexp.MustCompile(`\.{2,}\s*\d+$`)
	tocEntryRe  = regexp.MustCompile(`^(.+?)\s+\.{2,}\s*(\d+)$`)
	tocNumberRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)`)
	hasWordRe   = regexp.MustCompile(`\p{L}{2,}`)
	tocMarkerRe = regexp.MustCompile(`(?i)^(table of )?contents$`)
)

// TOCStrategy reads table-of-contents lines of the form
// "<heading> <dotted leader> <page number>".
// Page convention: printed (1-based) page number minus one.
//
// Wrapped entries are joined from at most two preceding lines on the same
// page; the buffer is cleared at page breaks and at a "Contents" marker so
// body text above the TOC never leaks into the first entry.
type TOCStrategy struct{}

func (TOCStrategy) Name() string { return NameTOC }

func (TOCStrategy) Classify(pages []pagetext.Page) outline.Outline {
	var out outline.Outline
	for _, entry := range mergeWrappedEntries(pages) {
		m := tocEntryRe.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		printed, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if len(strings.Fields(text)) > maxTOCWords {
			continue
		}
		out = append(out, outline.Heading{
			Level: tocLevel(text),
			Text:  text,
			Page:  printedToIndex(printed),
		})
	}
	outline.Sort(out)
	return out
}

// mergeWrappedEntries joins TOC entries that wrapped onto several lines.
// Letter-bearing lines without a page reference are buffered and prepended
// to the next line that has one.
func mergeWrappedEntries(pages []pagetext.Page) []string {
	var merged []string
	for _, p := range pages {
		var buffer []string
		for _, l := range p.Lines {
			line := strings.TrimSpace(l.Text)
			switch {
			case line == "":
			case tocTailRe.MatchString(line):
				merged = append(merged, strings.TrimSpace(strings.Join(append(buffer, line), " ")))
				buffer = buffer[:0]
			case tocMarkerRe.MatchString(line):
				buffer = buffer[:0]
			case hasWordRe.MatchString(line):
				buffer = append(buffer, line)
				if len(buffer) > maxWrappedLines {
					buffer = buffer[len(buffer)-maxWrappedLines:]
				}
			}
		}
	}
	return merged
}

// tocLevel ranks by numbering depth ("1.2" -> H2), else by length.
func tocLevel(text string) outline.Level {
	if m := tocNumberRe.FindStringSubmatch(text); m != nil {
		return outline.ClampLevel(strings.Count(m[1], ".") + 1)
	}
	if len([]rune(text)) <= shortTOCHeadingLen {
		return outline.H1
	}
	return outline.H2
}

// printedToIndex converts a 1-based printed page number to a 0-based index.
func printedToIndex(printed int) int {
	if printed < 1 {
		return 0
	}
	return printed - 1
}

// Package title infers a document title from its first page.
package title

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

const (
	maxTitleLines     = 2
	maxTitleLineWords = 8
)

// stopPatterns end title accumulation; the matching line is not included.
var stopPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Table of Contents`),
	regexp.MustCompile(`(?i)^\d+(\.\d+)*[\s.]`),
	regexp.MustCompile(`(?i)Copyright`),
	regexp.MustCompile(`(?i)Version\s+\d`),
}

// contactBannerRe matches titles that are really contact information.
var contactBannerRe = regexp.MustCompile(`(?i)^\s*ADDRESS[:\-]?`)

// Source records which heuristic produced a title.
type Source string

const (
	SourceLines      Source = "lines"
	SourceMetadata   Source = "metadata"
	SourceFilename   Source = "filename"
	SourceSuppressed Source = "suppressed"
)

// Detector infers titles. The zero value is ready to use.
type Detector struct{}

// Detect builds a title from the first page's lines. It returns "" when the
// first usable line already trips a stop condition.
func (Detector) Detect(lines []string) string {
	var parts []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isStopLine(line) || len(strings.Fields(line)) > maxTitleLineWords {
			break
		}
		parts = append(parts, line)
		if len(parts) >= maxTitleLines {
			break
		}
	}
	return outline.NormalizeTitle(strings.Join(parts, " "))
}

// Resolve applies the title heuristics in priority order: first-page lines,
// the metadata Title field, then the filename stem. A contact-banner result is
// suppressed to "". Resolve never fails.
func (d Detector) Resolve(doc *pagetext.Document) (string, Source) {
	var t string
	src := SourceLines
	if p := doc.FirstPage(); p != nil {
		t = d.Detect(p.LineTexts())
	}
	if t == "" {
		t, src = outline.NormalizeTitle(doc.MetadataTitle()), SourceMetadata
	}
	if t == "" {
		t, src = outline.NormalizeTitle(doc.Stem()), SourceFilename
	}
	if IsContactBanner(t) {
		return "", SourceSuppressed
	}
	return t, src
}

// IsContactBanner reports whether s looks like an "ADDRESS: ..." line.
func IsContactBanner(s string) bool {
	return contactBannerRe.MatchString(s)
}

func isStopLine(line string) bool {
	for _, re := range stopPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// TextParser handles plain text files. Form feeds separate pages; there is
// no geometry, so pages carry lines and sentences only.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*pagetext.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &pagetext.Document{Filename: filename, Format: pagetext.FormatText}
	var lines []string
	index := 0
	flush := func() {
		page := pagetext.NewPage(index, lines, nil)
		if len(page.Lines) > 0 {
			doc.Pages = append(doc.Pages, page)
		}
		index++
		lines = nil
	}

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\f")
		for i, part := range parts {
			if i > 0 {
				flush()
			}
			lines = append(lines, part)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return doc, nil
}

package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// DOCXParser handles .docx files. Paragraph styles "Heading N" and "Title"
// set the synthetic size; explicit page breaks start a new page.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*pagetext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &pagetext.Document{Filename: filename, Format: pagetext.FormatDOCX}
	b := newPageBuilder(0)
	flush := func() {
		if !b.empty() {
			out.Pages = append(out.Pages, b.page())
		}
		b = newPageBuilder(b.index + 1)
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text, pageBreak := docxParagraphText(para)
		style := docxStyle(para)
		switch {
		case text == "":
		case style == "title":
			b.add(text, headingSize(1))
			if out.Metadata == nil {
				out.Metadata = map[string]string{"Title": text}
			}
		default:
			if level := docxHeadingLevel(style); level > 0 {
				b.add(text, headingSize(level))
			} else {
				b.add(text, bodySize)
			}
		}
		if pageBreak {
			flush()
		}
	}
	if !b.empty() {
		out.Pages = append(out.Pages, b.page())
	}
	return out, nil
}

// docxStyle returns the paragraph style id, lower-cased without spaces.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// docxHeadingLevel parses "headingN" style ids.
func docxHeadingLevel(style string) int {
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return 0
	}
	return int(rest[0] - '0')
}

// docxParagraphText returns the paragraph text and whether it ends with a
// page break.
func docxParagraphText(para *docx.Paragraph) (string, bool) {
	var buf strings.Builder
	pageBreak := false
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				buf.WriteString(v.Text)
			case *docx.Tab:
				buf.WriteByte(' ')
			case *docx.BarterRabbet:
				if v.Type == "page" {
					pageBreak = true
				} else {
					buf.WriteByte('\n')
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), pageBreak
}

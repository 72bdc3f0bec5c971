// Package parser reads source files into the page text model. PDFs carry real
// geometry; structured formats (DOCX, Markdown, HTML) get synthetic word
// tokens whose font sizes follow their heading levels, so the same heading
// strategies apply to every format.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// ErrUnsupported is returned for file types no parser handles.
var ErrUnsupported = errors.New("unsupported file type")

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*pagetext.Document, error)
}

var extFormats = map[string]pagetext.Format{
	".pdf":      pagetext.FormatPDF,
	".docx":     pagetext.FormatDOCX,
	".md":       pagetext.FormatMarkdown,
	".markdown": pagetext.FormatMarkdown,
	".html":     pagetext.FormatHTML,
	".htm":      pagetext.FormatHTML,
	".txt":      pagetext.FormatText,
}

// FormatOf returns the source format for a filename.
func FormatOf(filename string) (pagetext.Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	_, ok := FormatOf(filename)
	return ok
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	format, ok := FormatOf(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(filename))
	}
	switch format {
	case pagetext.FormatPDF:
		return &PDFParser{}, nil
	case pagetext.FormatDOCX:
		return &DOCXParser{}, nil
	case pagetext.FormatMarkdown:
		return &MarkdownParser{}, nil
	case pagetext.FormatHTML:
		return &HTMLParser{}, nil
	default:
		return &TextParser{}, nil
	}
}

//go:build !ocr

package rescue

import (
	"context"
	"errors"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr to enable it; Tesseract must be installed.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract is the stub recognizer used when the "ocr" build tag is not set.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled.
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

func (Tesseract) Recognize(context.Context, []byte, []string) ([]pagetext.WordToken, error) {
	return nil, ErrOCRNotEnabled
}

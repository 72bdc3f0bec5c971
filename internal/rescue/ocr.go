//go:build ocr

package rescue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/dgallion1/docoutline/internal/pagetext"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract recognizes words with the Tesseract engine. A fresh engine client
// is created per call since gosseract clients are not safe for concurrent use.
type Tesseract struct{}

// NewTesseract returns a Tesseract recognizer.
func NewTesseract() (*Tesseract, error) {
	return &Tesseract{}, nil
}

func (Tesseract) Recognize(ctx context.Context, image []byte, languages []string) ([]pagetext.WordToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			return nil, fmt.Errorf("set language %s: %w", strings.Join(languages, "+"), err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	words := make([]pagetext.WordToken, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, pagetext.WordToken{
			Text:     text,
			X0:       float64(b.Box.Min.X),
			Top:      float64(b.Box.Min.Y),
			FontSize: float64(b.Box.Dy()),
		})
	}
	return words, nil
}

package rescue

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
)

// PopplerRenderer renders with pdftoppm and prepares the image for OCR.
type PopplerRenderer struct {
	DPI    int
	Binary string // defaults to "pdftoppm"
}

// NewPopplerRenderer returns a renderer at dpi. It fails when pdftoppm is not installed.
func NewPopplerRenderer(dpi int) (*PopplerRenderer, error) {
	bin, err := exec.LookPath("pdftoppm")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &PopplerRenderer{DPI: dpi, Binary: bin}, nil
}

func (p *PopplerRenderer) RenderFirstPage(ctx context.Context, pdfPath string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "outline-rescue-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin,
		"-f", "1", "-l", "1",
		"-r", strconv.Itoa(p.DPI),
		"-png", "-singlefile",
		pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, bytes.TrimSpace(out))
	}

	src, err := imaging.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("open rendered page: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Preprocess(src), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

// Preprocess converts a rendered page to a grayscale, mildly contrasted image.
func Preprocess(src image.Image) *image.NRGBA {
	img := imaging.Grayscale(src)
	return imaging.AdjustContrast(img, 20)
}

package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fumiama/imgsz"
	"github.com/lattice-data/ingestor/internal/content"
)

// minOCRDimension is the minimum width/height below which an image is
// skipped as too small to yield meaningful OCR text.
const minOCRDimension = 50

// ImageExtractor returns an ImageOCR variant, applying the dimension and
// format skip rules before invoking the external OCR collaborator.
type ImageExtractor struct{}

func (e *ImageExtractor) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".tiff", ".webp"}
}

func (e *ImageExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	if strings.EqualFold(filepath.Ext(fi.Name), ".ico") {
		return content.ExtractedContent{Kind: content.KindImage, ImageSkipped: true}, nil
	}

	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	format, width, height, err := imgsz.DecodeSize(f)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("decode image size: %v", err)), nil
	}
	_ = format

	if width < minOCRDimension || height < minOCRDimension {
		return content.ExtractedContent{Kind: content.KindImage, ImageWidth: width, ImageHeight: height, ImageSkipped: true}, nil
	}

	text, err := ocrImage(fi.Path)
	if err != nil {
		return errorContent(content.ErrMissingDependency, fmt.Sprintf("ocr unavailable: %v", err)), nil
	}

	return content.ExtractedContent{
		Kind:        content.KindImage,
		ImageText:   text,
		ImageWidth:  width,
		ImageHeight: height,
	}, nil
}

func ocrImage(path string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available: %w", err)
	}
	out, err := exec.Command("tesseract", path, "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

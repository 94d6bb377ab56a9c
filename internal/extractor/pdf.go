package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lattice-data/ingestor/internal/content"
	pdflib "github.com/ledongthuc/pdf"
)

// sampleClassifyPages is the page count sampled to classify a PDF as
// text-based or image-based.
const sampleClassifyPages = 3

// textPDFCharsPerPage is the average direct-extractable characters per
// sampled page above which a PDF is classified "text" and OCR is skipped
// entirely.
const textPDFCharsPerPage = 50

// imagePDFDirectFallbackChars is the per-page direct-extraction character
// count at or above which an individual page of an "image PDF" is still used
// as-is instead of OCR'd.
const imagePDFDirectFallbackChars = 30

// PDFExtractor returns a Paged variant, classifying the document as
// text-PDF (skip OCR) or image-PDF (OCR per page below the direct-text
// fallback threshold) by sampling the first few pages.
type PDFExtractor struct{}

func (e *PDFExtractor) Extensions() []string { return []string{".pdf"} }

func (e *PDFExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	f, reader, err := pdflib.Open(fi.Path)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open pdf: %v", err)), nil
	}
	defer f.Close()

	numPages := reader.NumPage()
	direct := make([]string, numPages+1) // 1-indexed
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		direct[i] = text
	}

	isTextPDF := classifyTextPDF(direct, numPages)

	pages := make([]content.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text := direct[i]
		if !isTextPDF && len(strings.TrimSpace(text)) < imagePDFDirectFallbackChars {
			if ocrText, err := ocrPDFPage(fi.Path, i); err == nil {
				text = ocrText
			}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, content.Page{Number: i, Text: text})
	}

	return content.ExtractedContent{
		Kind:  content.KindPaged,
		Title: strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name)),
		Pages: pages,
	}, nil
}

// classifyTextPDF samples the first sampleClassifyPages pages and compares
// their average direct-extractable length against textPDFCharsPerPage.
func classifyTextPDF(direct []string, numPages int) bool {
	n := sampleClassifyPages
	if numPages < n {
		n = numPages
	}
	if n == 0 {
		return true
	}
	total := 0
	for i := 1; i <= n; i++ {
		total += len(strings.TrimSpace(direct[i]))
	}
	return float64(total)/float64(n) > textPDFCharsPerPage
}

// ocrPDFPage rasterizes one page with pdftoppm and OCRs it with tesseract.
// Both are external collaborators per §1; their absence yields an error
// the caller treats as "no OCR text available" rather than fatal.
func ocrPDFPage(pdfPath string, page int) (string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", fmt.Errorf("pdftoppm not available: %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "ingestor-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-png", "-f", fmt.Sprint(page), "-l", fmt.Sprint(page), "-r", "200", pdfPath, prefix)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no rasterized page produced")
	}

	out, err := exec.Command("tesseract", matches[0], "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

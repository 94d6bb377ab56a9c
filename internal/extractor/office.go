package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/lattice-data/ingestor/internal/content"
	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	"github.com/xuri/excelize/v2"
)

// DOCXExtractor returns a Text variant built from every paragraph's runs,
// generalized from the teacher's heading-tree DOCX parser into a flat
// document since the storage pipeline no longer consumes structure.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extensions() []string { return []string{".docx"} }

func (e *DOCXExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return content.ExtractedContent{}, err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("parse docx: %v", err)), nil
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}

	return content.ExtractedContent{
		Kind:  content.KindText,
		Title: strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name)),
		Text:  strings.TrimRight(sb.String(), "\n"),
	}, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// XLSXExtractor returns a Tabular variant, one sheet name -> rows mapping.
type XLSXExtractor struct{}

func (e *XLSXExtractor) Extensions() []string { return []string{".xlsx"} }

func (e *XLSXExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	f, err := excelize.OpenFile(fi.Path)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open xlsx: %v", err)), nil
	}
	defer f.Close()

	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheets[name] = rows
	}

	return content.ExtractedContent{
		Kind:   content.KindTabular,
		Title:  strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name)),
		Sheets: sheets,
	}, nil
}

// PPTXExtractor walks the OOXML zip container directly (PPTX's slide XML
// is not covered by excelize/go-docx), concatenating the text runs in
// each ppt/slides/slideN.xml in slide order.
type PPTXExtractor struct{}

func (e *PPTXExtractor) Extensions() []string { return []string{".pptx"} }

func (e *PPTXExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	zr, err := zip.OpenReader(fi.Path)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open pptx: %v", err)), nil
	}
	defer zr.Close()

	var slideFiles []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideFiles = append(slideFiles, f)
		}
	}
	sortZipFilesByName(slideFiles)

	slides := make([][]string, 0, len(slideFiles))
	for _, sf := range slideFiles {
		rc, err := sf.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slides = append(slides, extractSlideText(data))
	}

	return content.ExtractedContent{
		Kind:   content.KindSlides,
		Title:  strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name)),
		Slides: slides,
	}, nil
}

// sortZipFilesByName orders slideN.xml entries by slide number: the names
// share a prefix and suffix, so a shorter name has fewer digits.
func sortZipFilesByName(files []*zip.File) {
	less := func(a, b string) bool {
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	}
	for i := 1; i < len(files); i++ {
		for j := i; j > 0 && less(files[j].Name, files[j-1].Name); j-- {
			files[j], files[j-1] = files[j-1], files[j]
		}
	}
}

// extractSlideText pulls the contents of every <a:t> run from slide XML
// without a full XML-to-tree decode, since only run text is needed.
func extractSlideText(data []byte) []string {
	const open, close = "<a:t>", "</a:t>"
	var shapes []string
	s := string(data)
	for {
		i := strings.Index(s, open)
		if i < 0 {
			break
		}
		s = s[i+len(open):]
		j := strings.Index(s, close)
		if j < 0 {
			break
		}
		if text := s[:j]; text != "" {
			shapes = append(shapes, text)
		}
		s = s[j+len(close):]
	}
	return shapes
}

// LegacyOfficeExtractor reads legacy OLE2 compound files (.doc/.xls/.ppt)
// via mscfb, extracting whatever plain text streams the container exposes.
// Full binary-format parsing (Word's text-run tables, BIFF records) is out
// of scope; this yields best-effort text from the WordDocument/Workbook
// stream's printable bytes.
type LegacyOfficeExtractor struct{}

func (e *LegacyOfficeExtractor) Extensions() []string { return []string{".doc", ".xls", ".ppt"} }

func (e *LegacyOfficeExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open ole2 container: %v", err)), nil
	}

	var sb strings.Builder
	var title string
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.IsDir() {
			continue
		}
		buf := make([]byte, entry.Size)
		n, _ := entry.Read(buf)
		if strings.Contains(entry.Name, "SummaryInformation") {
			if t := summaryTitle(buf[:n]); t != "" {
				title = t
			}
			continue
		}
		sb.WriteString(printableRuns(buf[:n]))
		sb.WriteString("\n")
	}

	if title == "" {
		title = strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name))
	}

	return content.ExtractedContent{
		Kind:  content.KindText,
		Title: title,
		Text:  strings.TrimRight(sb.String(), "\n"),
	}, nil
}

// summaryTitle reads the document Title property out of a raw OLE2
// \x05SummaryInformation property-set stream.
func summaryTitle(stream []byte) string {
	r := msoleps.New()
	if err := r.Reset(bytes.NewReader(stream)); err != nil {
		return ""
	}
	for _, p := range r.Property {
		if strings.EqualFold(p.Name, "Title") {
			return strings.TrimSpace(fmt.Sprint(p))
		}
	}
	return ""
}

// printableRuns extracts runs of at least 4 consecutive printable
// ASCII/UTF-16LE-decoded characters, a common heuristic for recovering
// text from legacy binary document streams without a full format parser.
func printableRuns(data []byte) string {
	var sb strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() >= 4 {
			sb.WriteString(run.String())
			sb.WriteString(" ")
		}
		run.Reset()
	}
	for i := 0; i+1 < len(data); i += 2 {
		lo, hi := data[i], data[i+1]
		if hi == 0 && lo >= 0x20 && lo < 0x7f {
			run.WriteByte(lo)
		} else {
			flush()
		}
	}
	flush()
	return strings.TrimSpace(sb.String())
}

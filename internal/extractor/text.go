package extractor

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"strings"

	"github.com/lattice-data/ingestor/internal/content"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// TextExtractor handles plain text and the structured "Remaining" group
// formats (json, xml, yaml) whose extracted content is simply their bytes.
type TextExtractor struct{}

func (e *TextExtractor) Extensions() []string { return []string{".txt", ".json", ".xml", ".yaml", ".yml"} }

func (e *TextExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	data, err := os.ReadFile(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	return content.ExtractedContent{Kind: content.KindText, Text: string(data)}, nil
}

// MarkdownExtractor renders Markdown to HTML via goldmark, then strips the
// resulting HTML tags for the purposes of tokenization.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extensions() []string { return []string{".md", ".markdown"} }

func (e *MarkdownExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	data, err := os.ReadFile(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(data, &buf); err != nil {
		return content.ExtractedContent{}, err
	}
	text, err := htmlToText(buf.Bytes())
	if err != nil {
		return content.ExtractedContent{}, err
	}
	return content.ExtractedContent{Kind: content.KindText, Text: text}, nil
}

// HTMLExtractor strips tags and concatenates the document's text nodes.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extensions() []string { return []string{".html", ".htm"} }

func (e *HTMLExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	data, err := os.ReadFile(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	text, err := htmlToText(data)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	return content.ExtractedContent{Kind: content.KindText, Text: text}, nil
}

func htmlToText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimRight(sb.String(), "\n"), nil
}

// CSVExtractor returns a Tables variant with one table holding every row,
// header included as the first row.
type CSVExtractor struct{}

func (e *CSVExtractor) Extensions() []string { return []string{".csv"} }

func (e *CSVExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return content.ExtractedContent{}, err
	}
	return content.ExtractedContent{Kind: content.KindTables, Tables: []content.Table{{Rows: records}}}, nil
}

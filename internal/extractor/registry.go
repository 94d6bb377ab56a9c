// Package extractor maps a file extension to a format-specific extractor,
// each returning a tagged content.ExtractedContent. Generalized from the
// teacher's parser registry (one Parser per extension, selected by
// filepath.Ext) into six extension groups and a typed content variant
// instead of a doctree.
package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/lattice-data/ingestor/internal/content"
)

// Group names the six extension groups used for priority and routing.
type Group string

const (
	GroupPDF       Group = "pdf"
	GroupOffice    Group = "office"
	GroupImage     Group = "image"
	GroupEmail     Group = "email"
	GroupArchive   Group = "archive"
	GroupRemaining Group = "remaining"
	GroupUnknown   Group = "unknown"
)

// FileInfo is the minimal description an extractor needs about the file
// on disk; the dispatcher supplies it.
type FileInfo struct {
	Path string
	Name string
	Size int64
}

// Extractor converts file bytes on disk into ExtractedContent.
type Extractor interface {
	Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error)
	Extensions() []string
}

var registry = map[string]Extractor{}

func register(e Extractor) {
	for _, ext := range e.Extensions() {
		registry[ext] = e
	}
}

func init() {
	register(&TextExtractor{})
	register(&MarkdownExtractor{})
	register(&HTMLExtractor{})
	register(&CSVExtractor{})
	register(&PDFExtractor{})
	register(&DOCXExtractor{})
	register(&XLSXExtractor{})
	register(&PPTXExtractor{})
	register(&LegacyOfficeExtractor{})
	register(&ImageExtractor{})
	register(&EmailExtractor{})
	register(&ArchiveExtractor{})
}

// extGroups maps extensions to their priority/routing group, independent
// of which Extractor implementation handles them.
var extGroups = map[string]Group{
	".txt": GroupRemaining, ".json": GroupRemaining, ".xml": GroupRemaining,
	".csv": GroupRemaining, ".yaml": GroupRemaining, ".yml": GroupRemaining,
	".html": GroupRemaining, ".htm": GroupRemaining, ".md": GroupRemaining, ".markdown": GroupRemaining,

	".docx": GroupOffice, ".xlsx": GroupOffice, ".pptx": GroupOffice,
	".doc": GroupOffice, ".xls": GroupOffice, ".ppt": GroupOffice,

	".pdf": GroupPDF,

	".png": GroupImage, ".jpg": GroupImage, ".jpeg": GroupImage,
	".gif": GroupImage, ".bmp": GroupImage, ".ico": GroupImage, ".tiff": GroupImage, ".webp": GroupImage,

	".zip": GroupArchive, ".rar": GroupArchive, ".7z": GroupArchive,
	".tar": GroupArchive, ".gz": GroupArchive,

	".eml": GroupEmail, ".msg": GroupEmail, ".pst": GroupEmail,
}

// Ext returns the lowercase extension (with leading dot) of name.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// GroupFor reports the extension group of name, GroupUnknown if none.
func GroupFor(name string) Group {
	g, ok := extGroups[Ext(name)]
	if !ok {
		return GroupUnknown
	}
	return g
}

// ForFile returns the extractor registered for name's extension, and
// whether one was found at all (distinguishing UnsupportedType from
// MissingDependency, which a found-but-unavailable extractor reports
// itself via a content.ErrUnsupportedType/ErrMissingDependency result).
func ForFile(name string) (Extractor, bool) {
	e, ok := registry[Ext(name)]
	return e, ok
}

// errorContent builds the Error-kind ExtractedContent the storage
// pipeline treats uniformly regardless of which extractor produced it.
func errorContent(kind content.ErrorKind, detail string) content.ExtractedContent {
	return content.ExtractedContent{Kind: content.KindError, ErrorKind: kind, ErrorDetail: detail}
}

// Extract dispatches fi to its registered extractor, or returns
// Error{UnsupportedType} if its extension has none.
func Extract(ctx context.Context, fi FileInfo) content.ExtractedContent {
	e, ok := ForFile(fi.Name)
	if !ok {
		return errorContent(content.ErrUnsupportedType, "no extractor for extension "+Ext(fi.Name))
	}
	c, err := e.Extract(ctx, fi)
	if err != nil {
		return errorContent(content.ErrPermanent, err.Error())
	}
	return c
}

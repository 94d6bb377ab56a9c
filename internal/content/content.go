// Package content defines the tagged ExtractedContent variant every
// extractor returns, and the text-extraction flattener the storage pipeline
// uses to derive a single document-ordered text for tokenization.
package content

import (
	"sort"
	"strings"
)

// Kind tags which variant of ExtractedContent is populated.
type Kind string

const (
	KindText    Kind = "text"
	KindPaged   Kind = "paged"
	KindTabular Kind = "tabular"
	KindTables  Kind = "tables"
	KindSlides  Kind = "slides"
	KindEmail   Kind = "email"
	KindArchive Kind = "archive"
	KindImage   Kind = "image_ocr"
	KindError   Kind = "error"
)

// ErrorKind enumerates the error taxonomy from the error-handling design.
type ErrorKind string

const (
	ErrUnsupportedType   ErrorKind = "UnsupportedType"
	ErrMissingDependency ErrorKind = "MissingDependency"
	ErrInvalidHash       ErrorKind = "InvalidHash"
	ErrInvalidData       ErrorKind = "InvalidData"
	ErrTimeout           ErrorKind = "Timeout"
	ErrTransient         ErrorKind = "Transient"
	ErrPermanent         ErrorKind = "Permanent"
	ErrMaxDepthExceeded  ErrorKind = "MaxDepthExceeded"
	ErrInternal          ErrorKind = "Internal"
)

type Page struct {
	Number int
	Text   string
}

type Table struct {
	Rows [][]string
}

type Email struct {
	From       string
	To         string
	Cc         string
	Bcc        string
	Subject    string
	Date       string
	MessageID  string
	Body       string
}

// ExtractedContent is the tagged variant produced by every extractor in
// internal/extractor. Exactly the field(s) matching Kind are meaningful.
type ExtractedContent struct {
	Kind Kind

	// Title, when present, overrides the file name as the document title
	// (e.g. an email Subject, a legacy Office SummaryInformation title).
	Title string

	Text string // KindText

	Pages []Page // KindPaged

	Sheets map[string][][]string // KindTabular: sheet name -> rows of cells
	Tables []Table                // KindTables

	Slides [][]string // KindSlides: one []string of text shapes per slide

	Emails []Email // KindEmail: one or more messages, concatenated in order

	ExtractionDir string // KindArchive / Email.attachments_dir

	ImageText    string // KindImage
	ImageWidth   int
	ImageHeight  int
	ImageSkipped bool

	ErrorKind   ErrorKind // KindError
	ErrorDetail string
}

// Flatten implements the authoritative merge order from the storage
// pipeline's text-extraction step: walk the variant and concatenate
// textual fragments in document order.
func Flatten(c ExtractedContent) string {
	switch c.Kind {
	case KindPaged:
		parts := make([]string, 0, len(c.Pages))
		for _, p := range c.Pages {
			parts = append(parts, p.Text)
		}
		return strings.Join(parts, "\n")

	case KindTabular:
		names := make([]string, 0, len(c.Sheets))
		for name := range c.Sheets {
			names = append(names, name)
		}
		sort.Strings(names)

		var sb strings.Builder
		for _, name := range names {
			for _, row := range c.Sheets[name] {
				sb.WriteString(strings.Join(row, " "))
				sb.WriteString("\n")
			}
		}
		return strings.TrimRight(sb.String(), "\n")

	case KindTables:
		var sb strings.Builder
		for _, table := range c.Tables {
			for _, row := range table.Rows {
				sb.WriteString(strings.Join(row, " "))
				sb.WriteString("\n")
			}
		}
		return strings.TrimRight(sb.String(), "\n")

	case KindSlides:
		parts := make([]string, 0, len(c.Slides))
		for _, shapes := range c.Slides {
			parts = append(parts, strings.Join(shapes, ""))
		}
		return strings.Join(parts, "\n")

	case KindEmail:
		var sb strings.Builder
		for i, m := range c.Emails {
			if i > 0 {
				sb.WriteString("\n")
			}
			for _, h := range []string{m.From, m.To, m.Cc, m.Bcc, m.Subject, m.Date, m.MessageID} {
				if h != "" {
					sb.WriteString(h)
					sb.WriteString(" ")
				}
			}
			sb.WriteString(m.Body)
		}
		return sb.String()

	case KindImage:
		return c.ImageText

	case KindText:
		return c.Text

	case KindArchive:
		return ""

	default:
		return ""
	}
}

// Subject returns the best-effort title candidate for this variant, before
// falling back to the file name (the storage pipeline truncates to 200
// chars itself).
func Subject(c ExtractedContent) string {
	if c.Title != "" {
		return c.Title
	}
	if c.Kind == KindEmail && len(c.Emails) > 0 {
		return c.Emails[0].Subject
	}
	return ""
}

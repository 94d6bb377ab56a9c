package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jhillyerd/enmime"
	"github.com/lattice-data/ingestor/internal/content"
)

// emailStagingRoot is where an email's attachments are staged for
// recursive re-ingestion, mirroring an archive's extraction_dir.
var emailStagingRoot = os.TempDir()

// EmailExtractor returns an Email variant plus, when attachments are
// present, an extraction_dir of staged attachment files for C5 to walk.
// .pst is not handled: no pack library parses the PST container format,
// so it yields Error{MissingDependency} per the extension-group contract.
type EmailExtractor struct{}

func (e *EmailExtractor) Extensions() []string { return []string{".eml", ".msg", ".pst"} }

func (e *EmailExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	switch Ext(fi.Name) {
	case ".msg":
		return errorContent(content.ErrMissingDependency, "legacy .msg container not supported"), nil
	case ".pst":
		return errorContent(content.ErrMissingDependency, "pst container not supported"), nil
	}

	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("parse eml: %v", err)), nil
	}

	msg := content.Email{
		From:      env.GetHeader("From"),
		To:        env.GetHeader("To"),
		Cc:        env.GetHeader("Cc"),
		Bcc:       env.GetHeader("Bcc"),
		Subject:   env.GetHeader("Subject"),
		Date:      env.GetHeader("Date"),
		MessageID: env.GetHeader("Message-Id"),
		Body:      env.Text,
	}
	if msg.Body == "" {
		msg.Body = env.HTML
	}

	result := content.ExtractedContent{
		Kind:   content.KindEmail,
		Title:  msg.Subject,
		Emails: []content.Email{msg},
	}

	if len(env.Attachments) == 0 {
		return result, nil
	}

	stageDir, err := os.MkdirTemp(emailStagingRoot, "ingestor-eml-*")
	if err != nil {
		return result, nil
	}
	for i, att := range env.Attachments {
		name := att.FileName
		if name == "" {
			name = "attachment-" + strconv.Itoa(i)
		}
		dest := filepath.Join(stageDir, name)
		if err := os.WriteFile(dest, att.Content, 0o644); err != nil {
			continue
		}
	}
	result.ExtractionDir = stageDir
	return result, nil
}

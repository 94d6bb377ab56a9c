package extractor

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// CorrectExtension inspects path's magic bytes and, if they disagree with
// its current extension, returns a corrected file name (same directory
// and base, new extension). Returns path unchanged when detection fails
// or already agrees, per the recursive ingestor's "staged files whose
// magic bytes disagree with their filename extension" rule.
func CorrectExtension(path string) string {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return path
	}

	detected := mime.Extension()
	if detected == "" {
		return path
	}
	current := strings.ToLower(filepath.Ext(path))
	if strings.EqualFold(detected, current) {
		return path
	}
	if _, ok := extGroups[strings.ToLower(detected)]; !ok {
		return path
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + detected
}

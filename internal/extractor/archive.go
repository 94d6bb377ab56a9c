package extractor

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lattice-data/ingestor/internal/content"
)

// archiveStagingRoot is where archive members are staged for recursive
// re-ingestion by C5, mirroring the spec's "extraction_dir" container
// field. It is always os.TempDir(); the EXTRACTION_FOLDER setting is not
// consulted.
var archiveStagingRoot = os.TempDir()

// ArchiveExtractor handles ZIP, TAR, and gzip containers by staging their
// members to a fresh directory and returning it for C5 to walk. .rar and
// .7z have no pure-Go decoder among the retrieved libraries and yield
// Error{MissingDependency}.
type ArchiveExtractor struct{}

func (e *ArchiveExtractor) Extensions() []string { return []string{".zip", ".rar", ".7z", ".tar", ".gz"} }

func (e *ArchiveExtractor) Extract(ctx context.Context, fi FileInfo) (content.ExtractedContent, error) {
	switch Ext(fi.Name) {
	case ".zip":
		return e.extractZip(fi)
	case ".tar":
		return e.extractTar(fi)
	case ".gz":
		return e.extractGzip(fi)
	default:
		return errorContent(content.ErrMissingDependency, "no decoder available for "+Ext(fi.Name)), nil
	}
}

func (e *ArchiveExtractor) extractZip(fi FileInfo) (content.ExtractedContent, error) {
	zr, err := zip.OpenReader(fi.Path)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open zip: %v", err)), nil
	}
	defer zr.Close()

	stageDir, err := os.MkdirTemp(archiveStagingRoot, "ingestor-zip-*")
	if err != nil {
		return content.ExtractedContent{}, err
	}

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if err := stageZipMember(stageDir, member); err != nil {
			continue
		}
	}

	return content.ExtractedContent{Kind: content.KindArchive, ExtractionDir: stageDir}, nil
}

func stageZipMember(stageDir string, member *zip.File) error {
	dest := filepath.Join(stageDir, filepath.Base(member.Name))
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func (e *ArchiveExtractor) extractTar(fi FileInfo) (content.ExtractedContent, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	stageDir, err := os.MkdirTemp(archiveStagingRoot, "ingestor-tar-*")
	if err != nil {
		return content.ExtractedContent{}, err
	}

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errorContent(content.ErrInvalidData, fmt.Sprintf("read tar: %v", err)), nil
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := stageTarMember(stageDir, hdr, tr); err != nil {
			continue
		}
	}

	return content.ExtractedContent{Kind: content.KindArchive, ExtractionDir: stageDir}, nil
}

func stageTarMember(stageDir string, hdr *tar.Header, r io.Reader) error {
	dest := filepath.Join(stageDir, filepath.Base(hdr.Name))
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, r)
	return err
}

func (e *ArchiveExtractor) extractGzip(fi FileInfo) (content.ExtractedContent, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("open gzip: %v", err)), nil
	}
	defer gz.Close()

	stageDir, err := os.MkdirTemp(archiveStagingRoot, "ingestor-gz-*")
	if err != nil {
		return content.ExtractedContent{}, err
	}

	name := gz.Name
	if name == "" {
		name = "decompressed"
	}
	dest := filepath.Join(stageDir, filepath.Base(name))
	out, err := os.Create(dest)
	if err != nil {
		return content.ExtractedContent{}, err
	}
	defer out.Close()

	if _, err := io.Copy(out, gz); err != nil {
		return errorContent(content.ErrInvalidData, fmt.Sprintf("decompress gzip: %v", err)), nil
	}

	return content.ExtractedContent{Kind: content.KindArchive, ExtractionDir: stageDir}, nil
}

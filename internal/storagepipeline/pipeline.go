// Package storagepipeline implements the ten-step per-file persistence
// workflow (C4): hash resolution, duplicate detection, metadata insertion,
// text derivation, tokenization and content persistence, word-frequency
// materialization, title indexing, and status promotion. Grounded on the
// original storage pipeline's step ordering and the teacher's
// pipeline.Worker.Process method (one synchronous, per-job workflow run by
// a dispatcher worker).
package storagepipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lattice-data/ingestor/internal/batch"
	"github.com/lattice-data/ingestor/internal/codec"
	"github.com/lattice-data/ingestor/internal/content"
	"github.com/lattice-data/ingestor/internal/dedup"
	"github.com/lattice-data/ingestor/internal/logging"
	"github.com/lattice-data/ingestor/internal/storage"
	"github.com/lattice-data/ingestor/internal/tokenize"
)

// maxHashableSize is the 100 MiB ceiling above which a file's digest is
// replaced with the SKIPPED_LARGE_FILE sentinel instead of being hashed.
const maxHashableSize = 100 * 1024 * 1024

// maxTitleChars truncates a derived title to the data model's bound.
const maxTitleChars = 200

// ResultKind tags the outcome of one Store call.
type ResultKind string

const (
	ResultSuccess     ResultKind = "Success"
	ResultDuplicate   ResultKind = "Duplicate"
	ResultInvalidHash ResultKind = "InvalidHash"
	ResultError       ResultKind = "Error"
)

// Result is the StorageResponse the dispatcher records per file.
type Result struct {
	Kind           ResultKind
	PathID         int64
	TitleID        int64
	ExistingPathID int64
	Message        string
}

// FileInfo is the caller-supplied description of the file being stored.
type FileInfo struct {
	Path     string
	Name     string
	Size     int64
	FileDate time.Time
	Hash     string // pre-computed digest, or "" if unknown
}

// WordOps, HashOps, PathOps, ContentOps, TitleOps are the narrow slices of
// *storage.DB this pipeline depends on, declared as interfaces so unit
// tests can exercise the workflow with hand-built fakes.
type WordOps interface {
	BatchEnsure(ctx context.Context, texts []string) (map[string]int64, error)
}

type PathOps interface {
	Insert(ctx context.Context, fi storage.FileInfo, hashID int64, status storage.PathStatus) (int64, error)
	SetStatus(ctx context.Context, pathID int64, status storage.PathStatus) error
}

type ContentOps interface {
	StoreChunks(ctx context.Context, tuples []codec.Tuple, pathID int64) (int, error)
}

type TitleOps interface {
	Store(ctx context.Context, wordIDs []uint32, pathID int64, parentTitleID *int64) (int64, error)
}

// Pipeline wires the storage operation interfaces, the deduplication
// index, and the word-path batch buffer into the ten-step workflow.
type Pipeline struct {
	dedup     *dedup.Index
	words     WordOps
	paths     PathOps
	contents  ContentOps
	titles    TitleOps
	wordPaths *batch.Buffer[batch.WordPathEdge]
	log       logging.Logger
}

func New(d *dedup.Index, words WordOps, paths PathOps, contents ContentOps, titles TitleOps, wordPaths *batch.Buffer[batch.WordPathEdge], log logging.Logger) *Pipeline {
	return &Pipeline{dedup: d, words: words, paths: paths, contents: contents, titles: titles, wordPaths: wordPaths, log: log}
}

// Store runs the full per-file workflow. parentTitleID is non-nil when fi
// is a child of a container produced by the recursive ingestor (C5).
func (p *Pipeline) Store(ctx context.Context, sourceID, sideID int64, fi FileInfo, extracted content.ExtractedContent, parentTitleID *int64) Result {
	// Step 1: hash resolution.
	digest := fi.Hash
	if !storage.ValidDigest(digest) {
		computed, err := p.hashFile(fi)
		if err != nil {
			return Result{Kind: ResultInvalidHash, Message: err.Error()}
		}
		digest = computed
	}
	if digest == "SKIPPED_LARGE_FILE" {
		return Result{Kind: ResultInvalidHash, Message: "file exceeds hashable size limit"}
	}

	// Step 2: duplicate check.
	isDup, existingPathID, err := p.dedup.LookupDuplicate(ctx, digest, sourceID, sideID)
	if err != nil {
		return Result{Kind: ResultError, Message: fmt.Sprintf("lookup duplicate: %v", err)}
	}
	if isDup {
		return Result{Kind: ResultDuplicate, ExistingPathID: *existingPathID}
	}

	// Step 3: hash insert.
	hashID, err := p.dedup.EnsureHash(ctx, digest, sourceID, sideID)
	if err != nil {
		return Result{Kind: ResultError, Message: fmt.Sprintf("ensure hash: %v", err)}
	}

	// Step 4: metadata insert.
	pathID, err := p.paths.Insert(ctx, storage.FileInfo{
		FileName:  fi.Name,
		FilePath:  fi.Path,
		SizeBytes: fi.Size,
		FileType:  extFileType(fi.Name),
		FileDate:  fi.FileDate,
		Hash:      digest,
	}, hashID, storage.StatusUnread)
	if err != nil {
		return Result{Kind: ResultError, Message: fmt.Sprintf("insert path: %v", err)}
	}

	// Step 5: text derivation.
	text := content.Flatten(extracted)

	tokenized := false
	if strings.TrimSpace(text) != "" {
		if err := p.persistContent(ctx, text, pathID); err != nil {
			p.log.Warn("content persistence failed, path kept as metadata-only", "path_id", pathID, "error", err)
		} else {
			tokenized = true
		}
	}

	// Step 8: title persistence (independent of tokenization success).
	title := content.Subject(extracted)
	if title == "" {
		title = fi.Name
	}
	if len(title) > maxTitleChars {
		title = title[:maxTitleChars]
	}
	titleID, err := p.persistTitle(ctx, title, pathID, parentTitleID)
	if err != nil {
		p.log.Warn("title persistence failed", "path_id", pathID, "error", err)
	}

	// Step 9: status promotion.
	if tokenized {
		if err := p.paths.SetStatus(ctx, pathID, storage.StatusRead); err != nil {
			p.log.Warn("status promotion failed", "path_id", pathID, "error", err)
		}
	}

	return Result{Kind: ResultSuccess, PathID: pathID, TitleID: titleID}
}

// hashFile computes SHA-256 of fi.Path's bytes, short-circuiting to the
// SKIPPED_LARGE_FILE sentinel above the 100 MiB ceiling.
func (p *Pipeline) hashFile(fi FileInfo) (string, error) {
	if fi.Size > maxHashableSize {
		return "SKIPPED_LARGE_FILE", nil
	}
	f, err := os.Open(fi.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// persistContent implements steps 6-7: tokenize, resolve word/punctuation
// ids, chunk and compress token tuples, then queue the word-frequency
// edges for the batch buffer to flush.
func (p *Pipeline) persistContent(ctx context.Context, text string, pathID int64) error {
	tokens, counts := tokenize.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	texts := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		texts[t.Word] = struct{}{}
		if t.PunctBefore != "" {
			texts[t.PunctBefore] = struct{}{}
		}
		if t.PunctAfter != "" {
			texts[t.PunctAfter] = struct{}{}
		}
		if t.Spacing != "" {
			texts[t.Spacing] = struct{}{}
		}
	}
	uniqueTexts := make([]string, 0, len(texts))
	for t := range texts {
		uniqueTexts = append(uniqueTexts, t)
	}

	ids, err := p.words.BatchEnsure(ctx, uniqueTexts)
	if err != nil {
		return fmt.Errorf("batch ensure words: %w", err)
	}

	tuples := make([]codec.Tuple, 0, len(tokens))
	for _, t := range tokens {
		tuples = append(tuples, codec.Tuple{
			WordID:        uint32(ids[t.Word]),
			PunctBeforeID: idOrZero(ids, t.PunctBefore),
			PunctAfterID:  idOrZero(ids, t.PunctAfter),
			SpacingID:     idOrZero(ids, t.Spacing),
		})
	}

	if _, err := p.contents.StoreChunks(ctx, tuples, pathID); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	for word, count := range counts {
		wordID, ok := ids[word]
		if !ok {
			continue
		}
		if err := p.wordPaths.Add(ctx, batch.WordPathEdge{PathID: pathID, WordID: wordID, Count: count}); err != nil {
			return fmt.Errorf("queue word-path edge: %w", err)
		}
	}
	return nil
}

func idOrZero(ids map[string]int64, text string) uint32 {
	if text == "" {
		return 0
	}
	return uint32(ids[text])
}

// persistTitle implements step 8: tokenize the title, resolve word ids,
// compress the id list, and insert the Title row.
func (p *Pipeline) persistTitle(ctx context.Context, title string, pathID int64, parentTitleID *int64) (int64, error) {
	words := tokenize.TokenizeTitle(title)
	if len(words) == 0 {
		return 0, nil
	}
	ids, err := p.words.BatchEnsure(ctx, words)
	if err != nil {
		return 0, fmt.Errorf("batch ensure title words: %w", err)
	}
	wordIDs := make([]uint32, 0, len(words))
	for _, w := range words {
		wordIDs = append(wordIDs, uint32(ids[w]))
	}
	return p.titles.Store(ctx, wordIDs, pathID, parentTitleID)
}

// extFileType derives the stored file_type column from the extension.
func extFileType(name string) string {
	ext := strings.ToLower(name)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		return ext[i+1:]
	}
	return ""
}

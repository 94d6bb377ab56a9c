package storagepipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lattice-data/ingestor/internal/batch"
	"github.com/lattice-data/ingestor/internal/codec"
	"github.com/lattice-data/ingestor/internal/content"
	"github.com/lattice-data/ingestor/internal/dedup"
	"github.com/lattice-data/ingestor/internal/logging"
	"github.com/lattice-data/ingestor/internal/storage"
)

type fakeHashStore struct {
	byTriple map[string]int64
	pathOf   map[int64]int64
	nextID   int64
}

func newFakeHashStore() *fakeHashStore {
	return &fakeHashStore{byTriple: map[string]int64{}, pathOf: map[int64]int64{}}
}

func key(digest string, sourceID, sideID int64) string {
	return digest + "|" + itoa(sourceID) + "|" + itoa(sideID)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func (s *fakeHashStore) Ensure(ctx context.Context, digest string, sourceID, sideID int64) (int64, error) {
	k := key(digest, sourceID, sideID)
	if id, ok := s.byTriple[k]; ok {
		return id, nil
	}
	s.nextID++
	s.byTriple[k] = s.nextID
	return s.nextID, nil
}

func (s *fakeHashStore) LookupDuplicate(ctx context.Context, digest string, sourceID, sideID int64) (bool, *int64, error) {
	if !storage.ValidDigest(digest) {
		return false, nil, nil
	}
	id, ok := s.byTriple[key(digest, sourceID, sideID)]
	if !ok {
		return false, nil, nil
	}
	pathID, ok := s.pathOf[id]
	if !ok {
		return false, nil, nil
	}
	return true, &pathID, nil
}

type fakeWordStore struct {
	nextID int64
	ids    map[string]int64
}

func newFakeWordStore() *fakeWordStore { return &fakeWordStore{ids: map[string]int64{}} }

func (s *fakeWordStore) BatchEnsure(ctx context.Context, texts []string) (map[string]int64, error) {
	out := make(map[string]int64, len(texts))
	for _, t := range texts {
		if id, ok := s.ids[t]; ok {
			out[t] = id
			continue
		}
		s.nextID++
		s.ids[t] = s.nextID
		out[t] = s.nextID
	}
	return out, nil
}

type fakePathStore struct {
	nextID int64
	status map[int64]storage.PathStatus
	hashes *fakeHashStore
}

func newFakePathStore(hashes *fakeHashStore) *fakePathStore {
	return &fakePathStore{status: map[int64]storage.PathStatus{}, hashes: hashes}
}

// Insert models the real paths.hash_id foreign key: once a path owns a
// hash, that hash is no longer an orphan, so LookupDuplicate must be able
// to find it.
func (s *fakePathStore) Insert(ctx context.Context, fi storage.FileInfo, hashID int64, status storage.PathStatus) (int64, error) {
	s.nextID++
	s.status[s.nextID] = status
	s.hashes.pathOf[hashID] = s.nextID
	return s.nextID, nil
}

func (s *fakePathStore) SetStatus(ctx context.Context, pathID int64, status storage.PathStatus) error {
	s.status[pathID] = status
	return nil
}

type fakeContentStore struct {
	chunksByPath map[int64][]codec.Tuple
}

func newFakeContentStore() *fakeContentStore { return &fakeContentStore{chunksByPath: map[int64][]codec.Tuple{}} }

func (s *fakeContentStore) StoreChunks(ctx context.Context, tuples []codec.Tuple, pathID int64) (int, error) {
	s.chunksByPath[pathID] = append(s.chunksByPath[pathID], tuples...)
	return 1, nil
}

type fakeTitleStore struct{ nextID int64 }

func (s *fakeTitleStore) Store(ctx context.Context, wordIDs []uint32, pathID int64, parentTitleID *int64) (int64, error) {
	s.nextID++
	return s.nextID, nil
}

func newTestPipeline() (*Pipeline, *fakeHashStore, *fakePathStore, *fakeContentStore) {
	hashes := newFakeHashStore()
	words := newFakeWordStore()
	paths := newFakePathStore(hashes)
	contents := newFakeContentStore()
	titles := &fakeTitleStore{}
	idx := dedup.New(hashes)
	wordPaths := batch.NewBuffer("word-path-edge", 500, func(ctx context.Context, items []batch.WordPathEdge) error {
		return nil
	}, logging.New())
	p := New(idx, words, paths, contents, titles, wordPaths, logging.New())
	return p, hashes, paths, contents
}

func writeNotes(t *testing.T) FileInfo {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	body := "Hello, world! Visit https://example.com on 2024-01-15."
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)
	return FileInfo{Path: path, Name: "notes.txt", Size: info.Size()}
}

func TestStore_SingleTextFile(t *testing.T) {
	p, _, paths, contents := newTestPipeline()
	fi := writeNotes(t)
	extracted := content.ExtractedContent{Kind: content.KindText, Text: "Hello, world! Visit https://example.com on 2024-01-15."}

	res := p.Store(context.Background(), 1, 1, fi, extracted, nil)
	if res.Kind != ResultSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if paths.status[res.PathID] != storage.StatusRead {
		t.Errorf("expected path promoted to Read, got %v", paths.status[res.PathID])
	}
	if len(contents.chunksByPath[res.PathID]) != 5 {
		t.Errorf("expected 5 tuples, got %d", len(contents.chunksByPath[res.PathID]))
	}
}

func TestStore_DuplicateIngestion(t *testing.T) {
	p, _, _, _ := newTestPipeline()
	fi := writeNotes(t)
	extracted := content.ExtractedContent{Kind: content.KindText, Text: "hello"}

	first := p.Store(context.Background(), 1, 1, fi, extracted, nil)
	if first.Kind != ResultSuccess {
		t.Fatalf("expected first ingestion to succeed, got %+v", first)
	}

	second := p.Store(context.Background(), 1, 1, fi, extracted, nil)
	if second.Kind != ResultDuplicate {
		t.Fatalf("expected duplicate, got %+v", second)
	}
	if second.ExistingPathID != first.PathID {
		t.Errorf("expected existing path id %d, got %d", first.PathID, second.ExistingPathID)
	}
}

func TestStore_SameContentDifferentSide(t *testing.T) {
	p, hashes, _, _ := newTestPipeline()
	fi := writeNotes(t)
	extracted := content.ExtractedContent{Kind: content.KindText, Text: "hello"}

	first := p.Store(context.Background(), 1, 1, fi, extracted, nil)
	second := p.Store(context.Background(), 1, 2, fi, extracted, nil)

	if second.Kind != ResultSuccess {
		t.Fatalf("expected new side to succeed, got %+v", second)
	}
	if second.PathID == first.PathID {
		t.Errorf("expected distinct path ids across sides")
	}

	isDup, existing, err := hashes.LookupDuplicate(context.Background(), computeDigest(t, fi), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !isDup || *existing != first.PathID {
		t.Errorf("expected side A lookup to still resolve to the original path")
	}
}

func computeDigest(t *testing.T, fi FileInfo) string {
	t.Helper()
	p, _, _, _ := newTestPipeline()
	digest, err := p.hashFile(fi)
	if err != nil {
		t.Fatal(err)
	}
	return digest
}

package dedup

import (
	"context"
	"testing"
)

// fakeStore is a minimal in-memory HashStore for exercising the index
// contract without a database.
type fakeStore struct {
	hashes     map[string]int64 // "digest|source|side" -> hash id
	pathsByHash map[int64]int64
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{hashes: map[string]int64{}, pathsByHash: map[int64]int64{}, nextID: 1}
}

func key(digest string, source, side int64) string {
	return digest + "|" + itoa(source) + "|" + itoa(side)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (f *fakeStore) Ensure(ctx context.Context, digest string, sourceID, sideID int64) (int64, error) {
	k := key(digest, sourceID, sideID)
	if id, ok := f.hashes[k]; ok {
		return id, nil
	}
	id := f.nextID
	f.nextID++
	f.hashes[k] = id
	return id, nil
}

func (f *fakeStore) LookupDuplicate(ctx context.Context, digest string, sourceID, sideID int64) (bool, *int64, error) {
	k := key(digest, sourceID, sideID)
	id, ok := f.hashes[k]
	if !ok {
		return false, nil, nil
	}
	pathID, ok := f.pathsByHash[id]
	if !ok {
		return false, nil, nil
	}
	return true, &pathID, nil
}

func (f *fakeStore) attachPath(digest string, sourceID, sideID, pathID int64) {
	id := f.hashes[key(digest, sourceID, sideID)]
	f.pathsByHash[id] = pathID
}

func TestLookupDuplicate_NoMatch(t *testing.T) {
	store := newFakeStore()
	idx := New(store)
	dup, pathID, err := idx.LookupDuplicate(context.Background(), "abc", 1, 1)
	if err != nil || dup || pathID != nil {
		t.Fatalf("expected no match, got dup=%v path=%v err=%v", dup, pathID, err)
	}
}

func TestLookupDuplicate_OrphanHashIsNotDuplicate(t *testing.T) {
	store := newFakeStore()
	idx := New(store)
	ctx := context.Background()
	if _, err := idx.EnsureHash(ctx, "abc", 1, 1); err != nil {
		t.Fatal(err)
	}
	dup, pathID, err := idx.LookupDuplicate(ctx, "abc", 1, 1)
	if err != nil || dup || pathID != nil {
		t.Fatalf("expected orphan hash to be reported as non-duplicate, got dup=%v path=%v", dup, pathID)
	}
}

func TestLookupDuplicate_TrueDuplicate(t *testing.T) {
	store := newFakeStore()
	idx := New(store)
	ctx := context.Background()
	idx.EnsureHash(ctx, "abc", 1, 1)
	store.attachPath("abc", 1, 1, 42)

	dup, pathID, err := idx.LookupDuplicate(ctx, "abc", 1, 1)
	if err != nil || !dup || pathID == nil || *pathID != 42 {
		t.Fatalf("expected duplicate at path 42, got dup=%v path=%v err=%v", dup, pathID, err)
	}
}

func TestLookupDuplicate_DifferentSideIsNotDuplicate(t *testing.T) {
	store := newFakeStore()
	idx := New(store)
	ctx := context.Background()
	idx.EnsureHash(ctx, "abc", 1, 1)
	store.attachPath("abc", 1, 1, 42)

	dup, _, err := idx.LookupDuplicate(ctx, "abc", 1, 2)
	if err != nil || dup {
		t.Fatalf("expected side=2 triple to be distinct, got dup=%v", dup)
	}
}

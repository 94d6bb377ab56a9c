// Package dedup implements the Deduplication Index (C3): the
// (digest, source, side) -> hash-id mapping and the hash-id -> path-id
// duplicate lookup, grounded on the "orphan hash is not a duplicate"
// variant of the original hash operations.
package dedup

import "context"

// HashStore is the subset of storage.HashOps the index needs, kept as an
// interface so it can be exercised against an in-memory fake in tests.
type HashStore interface {
	Ensure(ctx context.Context, digest string, sourceID, sideID int64) (int64, error)
	LookupDuplicate(ctx context.Context, digest string, sourceID, sideID int64) (bool, *int64, error)
}

type Index struct {
	store HashStore
}

func New(store HashStore) *Index {
	return &Index{store: store}
}

// EnsureHash inserts the hash row if absent and returns its id either way.
func (i *Index) EnsureHash(ctx context.Context, digest string, sourceID, sideID int64) (int64, error) {
	return i.store.Ensure(ctx, digest, sourceID, sideID)
}

// LookupDuplicate reports (is_duplicate, existing_path_id). An orphan hash
// (one with no owning Path) is reported as not-a-duplicate so the caller
// knows it may reuse the hash id for the Path it is about to insert.
func (i *Index) LookupDuplicate(ctx context.Context, digest string, sourceID, sideID int64) (bool, *int64, error) {
	return i.store.LookupDuplicate(ctx, digest, sourceID, sideID)
}

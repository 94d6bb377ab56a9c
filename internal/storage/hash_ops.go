package storage

import "context"

// HashOps implements the deduplication index contract (C3): insert-if-absent
// hash rows, race-safe via native ON CONFLICT ... RETURNING, and the
// "orphan hash is not a duplicate" lookup semantics chosen in the design
// notes over the source's other two variants.
type HashOps struct{ db *DB }

func (db *DB) Hashes() *HashOps { return &HashOps{db: db} }

var invalidDigests = map[string]bool{
	"":                     true,
	"N/A":                  true,
	"SKIPPED_LARGE_FILE":   true,
	"ERROR":                true,
}

// ValidDigest rejects sentinel values and anything whose length is not 64
// (the length of a hex SHA-256 digest); the characters are not checked.
func ValidDigest(digest string) bool {
	if invalidDigests[digest] {
		return false
	}
	return len(digest) == 64
}

// Ensure inserts the hash row if absent and returns its id either way.
func (o *HashOps) Ensure(ctx context.Context, digest string, sourceID, sideID int64) (int64, error) {
	var id int64
	err := o.db.pool.QueryRow(ctx, `
		INSERT INTO hashes (digest, source_id, side_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (digest, source_id, side_id) DO UPDATE SET digest = EXCLUDED.digest
		RETURNING id
	`, digest, sourceID, sideID).Scan(&id)
	return id, err
}

// LookupDuplicate reports whether the triple already owns a Path. An
// invalid digest always short-circuits to (false, nil). A Hash row with no
// owning Path is an orphan, not a duplicate — the caller is expected to
// reuse that hash id via Ensure.
func (o *HashOps) LookupDuplicate(ctx context.Context, digest string, sourceID, sideID int64) (bool, *int64, error) {
	if !ValidDigest(digest) {
		return false, nil, nil
	}

	var hashID int64
	err := o.db.pool.QueryRow(ctx, `
		SELECT id FROM hashes WHERE digest = $1 AND source_id = $2 AND side_id = $3
	`, digest, sourceID, sideID).Scan(&hashID)
	if err != nil {
		if isNoRows(err) {
			return false, nil, nil
		}
		return false, nil, err
	}

	var pathID int64
	err = o.db.pool.QueryRow(ctx, `
		SELECT id FROM paths WHERE hash_id = $1 ORDER BY id LIMIT 1
	`, hashID).Scan(&pathID)
	if err != nil {
		if isNoRows(err) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, &pathID, nil
}

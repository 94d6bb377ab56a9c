package storage

import (
	"context"

	"github.com/lattice-data/ingestor/internal/codec"
)

// ContentOps persists token-tuple chunks as deflate-compressed blobs, one
// Content row per chunk, ordered by id as the data model requires.
type ContentOps struct{ db *DB }

func (db *DB) Contents() *ContentOps { return &ContentOps{db: db} }

// StoreChunks compresses and inserts one Content row per chunk, chunking
// at the codec package's size threshold.
func (o *ContentOps) StoreChunks(ctx context.Context, tuples []codec.Tuple, pathID int64) (int, error) {
	chunks := codec.Chunk(tuples)
	for _, chunk := range chunks {
		blob, err := codec.CompressTuples(chunk)
		if err != nil {
			return 0, err
		}
		if _, err := o.db.pool.Exec(ctx, `
			INSERT INTO contents (compressed_blob, path_id) VALUES ($1, $2)
		`, blob, pathID); err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}

// Retrieve concatenates every chunk for a path, ordered by id, and decodes
// the combined tuple stream.
func (o *ContentOps) Retrieve(ctx context.Context, pathID int64) ([]codec.Tuple, error) {
	rows, err := o.db.pool.Query(ctx, `
		SELECT compressed_blob FROM contents WHERE path_id = $1 ORDER BY id
	`, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []codec.Tuple
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		tuples, err := codec.DecompressTuples(blob)
		if err != nil {
			return nil, err
		}
		all = append(all, tuples...)
	}
	return all, rows.Err()
}

type ContentStats struct {
	ChunkCount           int
	TotalCompressedBytes int64
}

func (o *ContentOps) Stats(ctx context.Context, pathID int64) (ContentStats, error) {
	var stats ContentStats
	err := o.db.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(octet_length(compressed_blob)), 0)
		FROM contents WHERE path_id = $1
	`, pathID).Scan(&stats.ChunkCount, &stats.TotalCompressedBytes)
	return stats, err
}

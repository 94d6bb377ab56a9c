package storage

import (
	"context"

	"github.com/lattice-data/ingestor/internal/codec"
)

// TitleOps persists the Title tree produced by recursive ingestion:
// status=Main for a top-level file, status=Branch with a parent reference
// for children of a container.
type TitleOps struct{ db *DB }

func (db *DB) Titles() *TitleOps { return &TitleOps{db: db} }

func (o *TitleOps) Store(ctx context.Context, wordIDs []uint32, pathID int64, parentTitleID *int64) (int64, error) {
	blob, err := codec.CompressWordIDs(wordIDs)
	if err != nil {
		return 0, err
	}
	status := TitleMain
	if parentTitleID != nil {
		status = TitleBranch
	}
	var id int64
	err = o.db.pool.QueryRow(ctx, `
		INSERT INTO titles (compressed_word_id_list, status, parent_title_id, path_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, blob, string(status), parentTitleID, pathID).Scan(&id)
	return id, err
}

func (o *TitleOps) Retrieve(ctx context.Context, pathID int64) ([]uint32, error) {
	var blob []byte
	err := o.db.pool.QueryRow(ctx, `
		SELECT compressed_word_id_list FROM titles WHERE path_id = $1 ORDER BY id LIMIT 1
	`, pathID).Scan(&blob)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return codec.DecompressWordIDs(blob)
}

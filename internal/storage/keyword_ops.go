package storage

import (
	"context"

	"github.com/lattice-data/ingestor/internal/codec"
)

// KeywordOps mirrors TitleOps' storage shape for the Keyword/KeywordPath
// pair. No component in the ingestion pipeline calls this automatically —
// keyword categorization is outside the spec's scope — but the table
// shape and its operations exist so a future categorizer has somewhere to
// write, per the supplemented-features notes.
type KeywordOps struct{ db *DB }

func (db *DB) Keywords() *KeywordOps { return &KeywordOps{db: db} }

func (o *KeywordOps) Store(ctx context.Context, wordIDs []uint32, categoryID int64) (int64, error) {
	blob, err := codec.CompressWordIDs(wordIDs)
	if err != nil {
		return 0, err
	}
	var id int64
	err = o.db.pool.QueryRow(ctx, `
		INSERT INTO keywords (compressed_word_id_list, category_id)
		VALUES ($1, $2)
		RETURNING id
	`, blob, categoryID).Scan(&id)
	return id, err
}

func (o *KeywordOps) LinkPath(ctx context.Context, pathID, keywordID int64, count int) error {
	_, err := o.db.pool.Exec(ctx, `
		INSERT INTO keyword_paths (path_id, keyword_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (path_id, keyword_id) DO UPDATE SET count = EXCLUDED.count
	`, pathID, keywordID, count)
	return err
}

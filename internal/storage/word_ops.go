package storage

import "context"

// WordOps implements the append-only Word table and the WordPath
// frequency upserts, backed by the shared bounded word cache.
type WordOps struct{ db *DB }

func (db *DB) Words() *WordOps { return &WordOps{db: db} }

// Ensure materializes the id for a single word, populating the cache.
func (o *WordOps) Ensure(ctx context.Context, text string) (int64, error) {
	if id, ok := o.db.wordCache.get(text); ok {
		return id, nil
	}
	var id int64
	err := o.db.pool.QueryRow(ctx, `
		INSERT INTO words (text) VALUES ($1)
		ON CONFLICT (text) DO UPDATE SET text = EXCLUDED.text
		RETURNING id
	`, text).Scan(&id)
	if err != nil {
		return 0, err
	}
	o.db.wordCache.put(text, id)
	return id, nil
}

// BatchEnsure materializes ids for every distinct text, minimizing round
// trips for texts already warm in the cache.
func (o *WordOps) BatchEnsure(ctx context.Context, texts []string) (map[string]int64, error) {
	out := make(map[string]int64, len(texts))
	var misses []string
	for _, t := range texts {
		if id, ok := o.db.wordCache.get(t); ok {
			out[t] = id
			continue
		}
		misses = append(misses, t)
	}
	for _, t := range misses {
		id, err := o.Ensure(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t] = id
	}
	return out, nil
}

// StoreFrequencies upserts one WordPath row per distinct word id with its
// occurrence count, satisfying the WordPath-count law.
func (o *WordOps) StoreFrequencies(ctx context.Context, pathID int64, counts map[int64]int) error {
	for wordID, count := range counts {
		if _, err := o.db.pool.Exec(ctx, `
			INSERT INTO word_paths (path_id, word_id, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (path_id, word_id) DO UPDATE SET count = EXCLUDED.count
		`, pathID, wordID, count); err != nil {
			return err
		}
	}
	return nil
}

package storage

import "context"

// SourceOps is grounded on the data model's lazy-create-on-first-use
// lifecycle for Source rows.
type SourceOps struct{ db *DB }

func (db *DB) Sources() *SourceOps { return &SourceOps{db: db} }

// GetOrCreate inserts a Source if absent (native upsert with RETURNING),
// or returns the existing row's id.
func (o *SourceOps) GetOrCreate(ctx context.Context, name string, country, job string, importance float64) (int64, error) {
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}
	var id int64
	err := o.db.pool.QueryRow(ctx, `
		INSERT INTO sources (name, country, job, importance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, country, job, importance).Scan(&id)
	return id, err
}

func (o *SourceOps) List(ctx context.Context, search string, limit int) ([]Source, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := o.db.pool.Query(ctx, `
		SELECT id, name, country, job, importance, created_on FROM sources
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Name, &s.Country, &s.Job, &s.Importance, &s.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package storage

import "context"

// SideOps mirrors SourceOps; Side is a secondary partitioning dimension
// with the same lazy-create lifecycle.
type SideOps struct{ db *DB }

func (db *DB) Sides() *SideOps { return &SideOps{db: db} }

func (o *SideOps) GetOrCreate(ctx context.Context, name string, importance float64) (int64, error) {
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}
	var id int64
	err := o.db.pool.QueryRow(ctx, `
		INSERT INTO sides (name, importance)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, importance).Scan(&id)
	return id, err
}

func (o *SideOps) List(ctx context.Context, search string, limit int) ([]Side, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := o.db.pool.Query(ctx, `
		SELECT id, name, importance, created_on FROM sides
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Side
	for rows.Next() {
		var s Side
		if err := rows.Scan(&s.ID, &s.Name, &s.Importance, &s.CreatedOn); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

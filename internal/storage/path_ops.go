package storage

import (
	"context"
	"time"
)

// PathOps implements the Path half of the storage interface: metadata
// insertion with status=Unread, and the status-promotion step the storage
// pipeline performs once text has been tokenized and stored.
type PathOps struct{ db *DB }

func (db *DB) Paths() *PathOps { return &PathOps{db: db} }

func (o *PathOps) Insert(ctx context.Context, fi FileInfo, hashID int64, status PathStatus) (int64, error) {
	var fileDate *time.Time
	if !fi.FileDate.IsZero() {
		fileDate = &fi.FileDate
	}
	var id int64
	err := o.db.pool.QueryRow(ctx, `
		INSERT INTO paths (file_name, file_path, size_bytes, file_type, status, file_date, hash_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, fi.FileName, fi.FilePath, fi.SizeBytes, fi.FileType, string(status), fileDate, hashID).Scan(&id)
	return id, err
}

func (o *PathOps) SetStatus(ctx context.Context, pathID int64, status PathStatus) error {
	_, err := o.db.pool.Exec(ctx, `UPDATE paths SET status = $1 WHERE id = $2`, string(status), pathID)
	return err
}

// IsProcessed reports whether a path with this exact file_path and a
// Read status already exists. The CLI's resume skipping does not call it;
// it uses the checkpoint file instead.
func (o *PathOps) IsProcessed(ctx context.Context, filePath string) (bool, error) {
	var exists bool
	err := o.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM paths WHERE file_path = $1 AND status = 'Read')
	`, filePath).Scan(&exists)
	return exists, err
}

func (o *PathOps) Get(ctx context.Context, pathID int64) (*Path, error) {
	var p Path
	var status string
	var fileDate *time.Time
	err := o.db.pool.QueryRow(ctx, `
		SELECT id, file_name, file_path, size_bytes, file_type, status, file_date, created_on, hash_id
		FROM paths WHERE id = $1
	`, pathID).Scan(&p.ID, &p.FileName, &p.FilePath, &p.SizeBytes, &p.FileType, &status, &fileDate, &p.CreatedOn, &p.HashID)
	if err != nil {
		return nil, err
	}
	p.Status = PathStatus(status)
	if fileDate != nil {
		p.FileDate = *fileDate
	}
	return &p, nil
}

// Package storage implements the relational backing store for the data
// model: source/side provenance, content-addressed hashes, paths, content
// chunks, the word inventory, and titles/keywords. It is grounded on the
// storage pipeline's ten-step per-file workflow and the batch operations
// classes, backed by PostgreSQL via pgx.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-data/ingestor/internal/config"
)

// DB holds the connection pool and the bounded word cache shared across
// workers.
type DB struct {
	pool      *pgxpool.Pool
	wordCache *wordCache
}

// Open connects to PostgreSQL using the pool bounds from configuration.
func Open(ctx context.Context, cfg config.Config) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s pool_min_conns=%d pool_max_conns=%d",
		cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPassword,
		cfg.DBMinConnections, cfg.DBMaxConnections)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	return &DB{
		pool:      pool,
		wordCache: newWordCache(cfg.WordCacheSize),
	}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

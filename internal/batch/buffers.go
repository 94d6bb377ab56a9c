package batch

import (
	"context"

	"github.com/lattice-data/ingestor/internal/logging"
)

// WordPathEdge is one pending WordPath row.
type WordPathEdge struct {
	PathID int64
	WordID int64
	Count  int
}

// WordPathStore is the minimal storage surface the word-path queue
// flushes against, kept as an interface for testability.
type WordPathStore interface {
	StoreFrequencies(ctx context.Context, pathID int64, counts map[int64]int) error
}

// Buffers groups the batch queues fed by the storage pipeline. Word and
// hash resolution are deliberately not queued here: the dedup check and
// the token-tuple encoding both need the resulting id before the calling
// request can proceed, so those two stay synchronous calls against
// internal/storage (a file's distinct words go through one
// WordOps.BatchEnsure call, which skips words already in the word cache and
// issues one upsert per uncached word). Only WordPath frequency writes,
// which gate nothing downstream, go through an async queue.
type Buffers struct {
	WordPaths *Buffer[WordPathEdge]
}

func NewBuffers(maxSize int, wordPaths WordPathStore, log logging.Logger) *Buffers {
	return &Buffers{
		WordPaths: NewBuffer("word-path-edge", maxSize, func(ctx context.Context, items []WordPathEdge) error {
			byPath := make(map[int64]map[int64]int)
			for _, it := range items {
				m, ok := byPath[it.PathID]
				if !ok {
					m = make(map[int64]int)
					byPath[it.PathID] = m
				}
				m[it.WordID] += it.Count
			}
			for pathID, counts := range byPath {
				if err := wordPaths.StoreFrequencies(ctx, pathID, counts); err != nil {
					return err
				}
			}
			return nil
		}, log),
	}
}

// DrainAll flushes every queue; called on shutdown.
func (b *Buffers) DrainAll(ctx context.Context) error {
	return b.WordPaths.Drain(ctx)
}

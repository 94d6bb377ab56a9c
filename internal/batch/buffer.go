package batch

import (
	"context"
	"sync"
	"time"

	"github.com/lattice-data/ingestor/internal/logging"
)

// FlushFunc performs one transactional, idempotent flush of a batch of
// items (insert-if-absent, returning existing ids on conflict, as the
// storage layer's ON CONFLICT statements already guarantee).
type FlushFunc[T any] func(ctx context.Context, items []T) error

// Buffer accumulates items up to a size threshold, flushing on threshold
// or on an explicit Drain, retrying a failed flush with bounded backoff
// only when the error is retryable.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T

	maxSize int
	flush   FlushFunc[T]
	log     logging.Logger
	name    string
}

func NewBuffer[T any](name string, maxSize int, flush FlushFunc[T], log logging.Logger) *Buffer[T] {
	if maxSize <= 0 {
		maxSize = 500
	}
	return &Buffer[T]{maxSize: maxSize, flush: flush, log: log, name: name}
}

// Add appends an item, flushing synchronously if the threshold is reached.
func (b *Buffer[T]) Add(ctx context.Context, item T) error {
	b.mu.Lock()
	b.items = append(b.items, item)
	shouldFlush := len(b.items) >= b.maxSize
	b.mu.Unlock()

	if shouldFlush {
		return b.Drain(ctx)
	}
	return nil
}

// Drain flushes whatever is currently buffered, retrying retryable errors
// with exponential backoff up to MaxRetries.
func (b *Buffer[T]) Drain(ctx context.Context) error {
	b.mu.Lock()
	pending := b.items
	b.items = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		lastErr = b.flush(ctx, pending)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			b.log.Error("batch flush failed, not retryable", "buffer", b.name, "error", lastErr)
			return lastErr
		}
		b.log.Warn("batch flush failed, retrying", "buffer", b.name, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.log.Error("batch flush exhausted retries", "buffer", b.name, "error", lastErr)
	return lastErr
}

// Len reports the current buffered item count, for monitoring.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

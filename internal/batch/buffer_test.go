package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/lattice-data/ingestor/internal/logging"
)

func TestBuffer_FlushesAtThreshold(t *testing.T) {
	var flushed [][]int
	buf := NewBuffer("test", 3, func(ctx context.Context, items []int) error {
		cp := append([]int(nil), items...)
		flushed = append(flushed, cp)
		return nil
	}, logging.New())

	ctx := context.Background()
	buf.Add(ctx, 1)
	buf.Add(ctx, 2)
	if len(flushed) != 0 {
		t.Fatalf("expected no flush before threshold, got %v", flushed)
	}
	buf.Add(ctx, 3)
	if len(flushed) != 1 || len(flushed[0]) != 3 {
		t.Fatalf("expected one flush of 3 items, got %v", flushed)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected buffer empty after flush, got %d", buf.Len())
	}
}

func TestBuffer_DrainFlushesPartial(t *testing.T) {
	var flushed []int
	buf := NewBuffer("test", 500, func(ctx context.Context, items []int) error {
		flushed = append(flushed, items...)
		return nil
	}, logging.New())

	ctx := context.Background()
	buf.Add(ctx, 1)
	buf.Add(ctx, 2)
	if err := buf.Drain(ctx); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(flushed) != 2 {
		t.Fatalf("expected 2 items flushed, got %v", flushed)
	}
}

func TestBuffer_RetriesRetryableError(t *testing.T) {
	attempts := 0
	buf := NewBuffer("test", 1, func(ctx context.Context, items []int) error {
		attempts++
		if attempts < 2 {
			return errors.New("connection reset")
		}
		return nil
	}, logging.New())

	if err := buf.Add(context.Background(), 1); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestBuffer_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	buf := NewBuffer("test", 1, func(ctx context.Context, items []int) error {
		attempts++
		return errors.New("permission denied")
	}, logging.New())

	if err := buf.Add(context.Background(), 1); err == nil {
		t.Fatal("expected error to propagate")
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestIsRetryable_SubstringMatch(t *testing.T) {
	cases := map[string]bool{
		"connection refused": true,
		"request timeout":    true,
		"resource locked":    true,
		"server busy":        true,
		"deadlock detected":  true,
		"network unreachable": true,
		"temporary failure":  true,
		"permission denied":  false,
		"not found":          false,
	}
	for msg, want := range cases {
		if got := IsRetryable(errors.New(msg)); got != want {
			t.Errorf("IsRetryable(%q) = %v, want %v", msg, got, want)
		}
	}
}

func TestBackoff_FixedSchedule(t *testing.T) {
	want := []int64{100, 200, 400}
	for i, w := range want {
		if got := Backoff(i).Milliseconds(); got != w {
			t.Errorf("Backoff(%d) = %dms, want %dms", i, got, w)
		}
	}
}

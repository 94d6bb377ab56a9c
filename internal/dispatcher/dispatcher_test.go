package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lattice-data/ingestor/internal/content"
	"github.com/lattice-data/ingestor/internal/logging"
	"github.com/lattice-data/ingestor/internal/storagepipeline"
)

func TestPriority_Monotonicity(t *testing.T) {
	const oneMiB = 1 * mib
	txt := Priority("notes.txt", oneMiB)
	pdf := Priority("doc.pdf", oneMiB)
	png := Priority("image.png", oneMiB)
	zip := Priority("bundle.zip", oneMiB)

	if !(txt < pdf && pdf < png && png < zip) {
		t.Fatalf("expected txt < pdf < png < zip, got %d, %d, %d, %d", txt, pdf, png, zip)
	}
}

func TestPriority_CappedAtTen(t *testing.T) {
	p := Priority("bundle.zip", 60*mib)
	if p > 10 {
		t.Fatalf("expected priority capped at 10, got %d", p)
	}
}

type fakeStorer struct {
	delay map[string]time.Duration
}

func (s *fakeStorer) Store(ctx context.Context, sourceID, sideID int64, fi storagepipeline.FileInfo, extracted content.ExtractedContent, parentTitleID *int64) storagepipeline.Result {
	if d, ok := s.delay[fi.Name]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
		}
	}
	return storagepipeline.Result{Kind: storagepipeline.ResultSuccess, PathID: 1}
}

func writeTempFiles(t *testing.T, n int) []Task {
	t.Helper()
	dir := t.TempDir()
	var tasks []Task
	for i := 0; i < n; i++ {
		name := filepath.Base(dir) + "-" + string(rune('a'+i)) + ".txt"
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		tasks = append(tasks, Task{Path: path, Name: name, Size: 5})
	}
	return tasks
}

func TestDispatcher_CompletenessInvariant(t *testing.T) {
	tasks := writeTempFiles(t, 12)
	d := New(&fakeStorer{}, 1, 1, 4, 2, time.Second, NewGovernor(100, 50), logging.New())

	outcomes := d.Run(context.Background(), tasks)
	if len(outcomes) != len(tasks) {
		t.Fatalf("expected %d outcomes, got %d", len(tasks), len(outcomes))
	}
}

func TestDispatcher_TimeoutIsolatesOneFile(t *testing.T) {
	tasks := writeTempFiles(t, 10)
	slowName := tasks[0].Name
	storer := &fakeStorer{delay: map[string]time.Duration{slowName: 200 * time.Millisecond}}

	d := New(storer, 1, 1, 4, 2, 20*time.Millisecond, NewGovernor(100, 50), logging.New())
	outcomes := d.Run(context.Background(), tasks)

	if len(outcomes) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(outcomes))
	}
	failed, completed := 0, 0
	for _, o := range outcomes {
		if o.IsError {
			failed++
		} else {
			completed++
		}
	}
	if failed != 1 || completed != 9 {
		t.Fatalf("expected failed=1 completed=9, got failed=%d completed=%d", failed, completed)
	}
}

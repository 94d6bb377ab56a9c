package checkpoint

import "testing"

func TestCheckpoint_MarkAndQuery(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	cp, err := mgr.Create("run-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cp.IsProcessed("/a/b.txt") {
		t.Fatal("expected unprocessed before MarkProcessed")
	}
	if err := cp.MarkProcessed("/a/b.txt"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if !cp.IsProcessed("/a/b.txt") {
		t.Fatal("expected processed after MarkProcessed")
	}
}

func TestCheckpoint_LoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	cp, err := mgr.Create("run-2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cp.MarkProcessed("/x.pdf"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	loaded, err := mgr.Load("run-2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected non-nil checkpoint")
	}
	if !loaded.IsProcessed("/x.pdf") {
		t.Fatal("expected /x.pdf processed after reload")
	}
	if loaded.IsProcessed("/y.pdf") {
		t.Fatal("expected /y.pdf unprocessed")
	}
}

func TestCheckpoint_LoadMissingReturnsNil(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	loaded, err := mgr.Load("does-not-exist")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil checkpoint for missing run id")
	}
}

func TestCheckpoint_ListAndDelete(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	if _, err := mgr.Create("run-a"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := mgr.Create("run-b"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ids, err := mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 run ids, got %d: %v", len(ids), ids)
	}

	if err := mgr.Delete("run-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ids, err = mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "run-b" {
		t.Fatalf("expected only run-b remaining, got %v", ids)
	}
}

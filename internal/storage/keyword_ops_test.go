package storage

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestKeywordOps_StoreAndLinkPath is an integration test against a real
// PostgreSQL instance; it is skipped unless TEST_DATABASE_URL names one,
// since keyword_ops has no fake-backed unit test surface the way the
// interface-driven packages do.
func TestKeywordOps_StoreAndLinkPath(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping storage integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db := &DB{pool: pool, wordCache: newWordCache(0)}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	sourceID, err := db.Sources().GetOrCreate(ctx, "keyword-test-source", "", "", 0.5)
	if err != nil {
		t.Fatalf("GetOrCreate source: %v", err)
	}
	sideID, err := db.Sides().GetOrCreate(ctx, "keyword-test-side", 0.5)
	if err != nil {
		t.Fatalf("GetOrCreate side: %v", err)
	}
	hashID, err := db.Hashes().Ensure(ctx, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", sourceID, sideID)
	if err != nil {
		t.Fatalf("Ensure hash: %v", err)
	}
	pathID, err := db.Paths().Insert(ctx, FileInfo{FileName: "kw.txt", FilePath: "/tmp/kw.txt", SizeBytes: 3, FileType: "txt"}, hashID, StatusUnread)
	if err != nil {
		t.Fatalf("Insert path: %v", err)
	}

	keywordID, err := db.Keywords().Store(ctx, []uint32{1, 2, 3}, 0)
	if err != nil {
		t.Fatalf("Store keyword: %v", err)
	}

	if err := db.Keywords().LinkPath(ctx, pathID, keywordID, 2); err != nil {
		t.Fatalf("LinkPath: %v", err)
	}
}

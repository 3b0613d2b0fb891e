package storage

import (
	"context"
	"testing"

	"scalpel/internal/extract"
	"scalpel/internal/parser"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func extractFixture(t *testing.T, path, src string) *extract.FileEntities {
	t.Helper()
	res, err := parser.ParseFile(context.Background(), path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	t.Cleanup(res.Close)
	fe, err := extract.File(res)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	return fe
}

func TestCacheMissThenHit(t *testing.T) {
	db := openTestDB(t)
	fe := extractFixture(t, "a.js", "function foo() { return 1; }\n")

	_, ok, err := db.Get(fe.Path, fe.SourceHash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Fatal("empty cache reported a hit")
	}

	if err := db.Put(fe); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := db.Get(fe.Path, fe.SourceHash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("stored entry not found")
	}
	if len(got.Functions) != 1 || got.Functions[0].Name != "foo" {
		t.Errorf("round-tripped entities = %+v", got.Functions)
	}
	if got.Functions[0].Hash != fe.Functions[0].Hash {
		t.Error("hashes must survive the payload round trip")
	}
}

func TestCacheContentChangeIsMiss(t *testing.T) {
	db := openTestDB(t)
	v1 := extractFixture(t, "a.js", "function foo() { return 1; }\n")
	v2 := extractFixture(t, "a.js", "function foo() { return 2; }\n")

	if err := db.Put(v1); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok, _ := db.Get("a.js", v2.SourceHash); ok {
		t.Fatal("changed content must miss")
	}

	// Storing the new version evicts the old one.
	if err := db.Put(v2); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok, _ := db.Get("a.js", v1.SourceHash); ok {
		t.Error("stale row survived eviction")
	}
	rows, _, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestCachePurge(t *testing.T) {
	db := openTestDB(t)
	if err := db.Put(extractFixture(t, "a.js", "function foo() {}\n")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := db.Purge(); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	rows, _, _ := db.Stats()
	if rows != 0 {
		t.Errorf("rows after purge = %d, want 0", rows)
	}
}

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T, hashes []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songdata.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE song (md5 TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, h := range hashes {
		if _, err := db.Exec(`INSERT INTO song (md5) VALUES (?)`, h); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListHashes(t *testing.T) {
	path := newTestDB(t, []string{"aaa", "bbb", "ccc"})

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	hashes, err := store.ListHashes(context.Background())
	if err != nil {
		t.Fatalf("ListHashes failed: %v", err)
	}
	if len(hashes) != 3 {
		t.Errorf("got %d hashes, want 3", len(hashes))
	}
	for _, want := range []string{"aaa", "bbb", "ccc"} {
		if _, ok := hashes[want]; !ok {
			t.Errorf("missing hash %q", want)
		}
	}
}

func TestListHashes_SkipsEmptyRows(t *testing.T) {
	path := newTestDB(t, []string{"aaa", ""})

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	hashes, err := store.ListHashes(context.Background())
	if err != nil {
		t.Fatalf("ListHashes failed: %v", err)
	}
	if len(hashes) != 1 {
		t.Errorf("got %d hashes, want 1", len(hashes))
	}
}

func TestListHashes_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Force file creation.
	if _, err := db.Exec(`CREATE TABLE other (x TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.Close()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := store.ListHashes(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for missing table, got %v", err)
	}
}

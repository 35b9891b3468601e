package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// ErrUnavailable reports that the local song database cannot be opened
// or read. Without the inventory the missing set cannot be determined,
// so this error is fatal to a pipeline run.
var ErrUnavailable = errors.New("song database unavailable")

// Store reads the local osu! song database (songdata.db).
//
// The database is the read-only source of truth for which beatmaps are
// already present: it exposes one hash per installed beatmap in the
// `song` table. This package never mutates it; keeping the inventory
// current is the store's own job.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the song database at path.
//
// A missing file or an unopenable database returns an error wrapping
// ErrUnavailable together with the offending path.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path this store was opened with.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListHashes returns the set of content hashes present locally.
//
// The set is read once per pipeline run. Query failures wrap
// ErrUnavailable since an unreadable inventory is indistinguishable
// from an unopenable one for the caller.
func (s *Store) ListHashes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT md5 FROM song`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.path, err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var md5 sql.NullString
		if err := rows.Scan(&md5); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.path, err)
		}
		if md5.Valid && md5.String != "" {
			hashes[md5.String] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, s.path, err)
	}

	return hashes, nil
}

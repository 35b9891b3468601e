// Package inventory reads the local song database to determine which
// beatmaps are already installed.
//
// The database is SQLite (songdata.db next to the game install) and is
// treated strictly read-only: this package exposes the hash set and
// nothing else.
//
//	store, err := inventory.Open("songdata.db")
//	if errors.Is(err, inventory.ErrUnavailable) {
//	    // fatal: cannot determine the missing set
//	}
//	defer store.Close()
//
//	hashes, err := store.ListHashes(ctx)
package inventory

package model

// TableEntry represents one beatmap row from a remote difficulty table.
//
// Entries are produced by the catalog fetcher and are immutable once
// parsed. The Level is a star-rating-like value that may be fractional
// (3, 3.5, 4, ...); entries whose level could not be parsed never reach
// this type, they are dropped during catalog normalization.
type TableEntry struct {
	// Title is the beatmap title.
	Title string

	// Artist is the song artist.
	Artist string

	// URL is the osu! website URL of the beatmap, e.g.
	// "https://osu.ppy.sh/beatmapsets/12345#mania/67890".
	URL string

	// Level is the table's difficulty rating for this entry.
	Level float64

	// MD5 is the content hash identifying the beatmap. It is the key
	// for both inventory membership and cross-table deduplication.
	MD5 string
}

// RangeFilter selects table entries whose level falls inside an
// inclusive integer range.
type RangeFilter struct {
	// Table is the name of the table this filter applies to,
	// e.g. "7K + 8K".
	Table string

	// MinLevel is the inclusive lower bound.
	MinLevel int

	// MaxLevel is the inclusive upper bound.
	MaxLevel int
}

// Contains reports whether the given level satisfies the filter.
// Bounds are inclusive on both ends, so fractional levels between two
// selected integers (for example 3.5 with Min=3, Max=4) pass.
func (f RangeFilter) Contains(level float64) bool {
	return float64(f.MinLevel) <= level && level <= float64(f.MaxLevel)
}

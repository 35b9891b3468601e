package catalog

import (
	"github.com/air-afother/osu-table-downloader/internal/catalog/dto"
	"github.com/air-afother/osu-table-downloader/internal/model"
)

// Normalize filters raw catalog records by a level range and converts
// the survivors to TableEntry values.
//
// Records without a parsable level are silently excluded; malformed
// catalog entries are expected noise, not errors. Order is preserved.
// Normalize performs no deduplication: when several tables are
// normalized, concatenate the results and pass them through Dedupe.
func Normalize(raw []dto.JSONEntry, filter model.RangeFilter) []model.TableEntry {
	var entries []model.TableEntry
	for i := range raw {
		entry, ok := raw[i].ToEntry()
		if !ok {
			continue
		}
		if !filter.Contains(entry.Level) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// Dedupe removes entries sharing an MD5 hash, keeping the first
// occurrence in input order. Entries with an empty hash are dropped:
// they can never be matched against the inventory.
func Dedupe(entries []model.TableEntry) []model.TableEntry {
	seen := make(map[string]struct{}, len(entries))
	var unique []model.TableEntry
	for _, entry := range entries {
		if entry.MD5 == "" {
			continue
		}
		if _, dup := seen[entry.MD5]; dup {
			continue
		}
		seen[entry.MD5] = struct{}{}
		unique = append(unique, entry)
	}
	return unique
}

// Resolve subtracts the inventory from the normalized entries,
// promoting every absent entry to a WorkItem. Worklist order matches
// the input order. Entries whose URL carries no beatmapset id are still
// promoted; the download engine records them as skipped.
func Resolve(normalized []model.TableEntry, inventory map[string]struct{}) []model.WorkItem {
	var worklist []model.WorkItem
	for _, entry := range normalized {
		if _, present := inventory[entry.MD5]; present {
			continue
		}
		item, _ := model.NewWorkItem(entry)
		worklist = append(worklist, item)
	}
	return worklist
}

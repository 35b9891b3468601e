// Package model defines the core data structures used throughout
// the osu-table-downloader application.
//
// # TableEntry
//
// TableEntry is one row of a remote difficulty table: a ranked beatmap
// with its level rating and content hash:
//
//	entry := model.TableEntry{Title: "Song", Artist: "Artist", URL: mapURL, MD5: hash}
//
// # WorkItem
//
// WorkItem is a TableEntry promoted into the download worklist once it is
// known to be absent from the local inventory. It carries the beatmapset
// id extracted from the entry URL and the computed target filename:
//
//	item, ok := model.NewWorkItem(entry)
//	if ok {
//	    fmt.Println(item.FileName) // "Song - Artist [12345].osz"
//	}
//
// # Outcomes and progress
//
// Every worklist item resolves to exactly one DownloadOutcome. Progress is
// reported as immutable ProgressSnapshot values, which also derive the
// whole-run ETA estimate.
package model

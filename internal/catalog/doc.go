// Package catalog fetches remote difficulty-table catalogs and turns
// them into a download worklist.
//
// A catalog is a JSON array of beatmap records published per table
// (e.g. "7K + 8K", "4K"). The package covers three steps:
//
//  1. Fetch: retrieve and decode one catalog; failures carry the source
//     URL in a *FetchError and are fatal to the run.
//  2. Normalize + Dedupe: keep records whose level parses and falls in
//     the selected range, then drop duplicate hashes first-seen-wins
//     across however many tables were concatenated.
//  3. Resolve: subtract the local inventory's hash set, yielding the
//     ordered worklist of missing beatmaps.
//
// # Usage
//
//	fetcher := catalog.NewFetcher(client)
//	raw, err := fetcher.Fetch(ctx, tableURL)
//	if err != nil {
//	    return err // *FetchError names the failing table source
//	}
//	entries := catalog.Dedupe(catalog.Normalize(raw, filter))
//	worklist := catalog.Resolve(entries, inventoryHashes)
package catalog

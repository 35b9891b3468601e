// Package download executes the beatmap download worklist.
//
// # Engine
//
// The Engine walks the worklist one item at a time:
//
//  1. Items without an extractable beatmapset id are skipped.
//  2. Items whose target file already exists on disk are skipped
//     without a network call.
//  3. The rest are fetched from the download service as a streamed
//     GET; responses declaring a body below 200 KB are treated as
//     disguised error pages and skipped without writing.
//  4. Transport errors abort only the item they hit.
//
// Every item yields exactly one model.DownloadOutcome and exactly one
// progress callback, so a run's completed counter always reaches the
// worklist total.
//
// # Usage
//
//	engine := download.NewEngine(client, "https://api.nerinyan.moe/d/", logger)
//	outcomes, err := engine.Run(ctx, worklist, targetDir, func(p model.ProgressSnapshot) {
//	    fmt.Println(p) // "3/10 maps | ETA: 1m 24s"
//	})
//
// There is no cross-item concurrency and no per-item retry; both are
// deliberate, to stay inside the service's rate limits and keep ETA
// accounting exact.
package download

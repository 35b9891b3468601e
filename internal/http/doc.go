// Package http provides an HTTP client configured for catalog and
// beatmap archive requests.
//
// The Client in this package handles:
//   - The fixed "osu-downloader/1.0" User-Agent header
//   - A bounded 30-second timeout on every request
//   - Streamed file downloads in fixed-size chunks with progress tracking
//   - The undersized-response sanity check (the download service answers
//     failures with short bodies rather than error statuses)
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch a catalog
//	body, err := client.Get(ctx, catalogURL)
//
//	// Download an archive, rejecting bodies declared below 200 KB
//	written, err := client.DownloadFile(ctx, url, "/maps/set.osz", 200_000, nil)
//	if errors.Is(err, http.ErrUndersized) {
//	    // disguised error page, nothing was written
//	}
package http

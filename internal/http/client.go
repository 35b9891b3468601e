package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrUndersized is returned by DownloadFile when the response advertises
// a Content-Length below the caller's minimum. The download service
// returns short HTML/JSON bodies instead of error statuses on failure,
// so a small declared length is treated as a disguised error page.
var ErrUndersized = errors.New("response body below minimum size")

// downloadChunkSize is the buffer size used when streaming a body to disk.
const downloadChunkSize = 8192

// Client wraps HTTP operations with osu-table-downloader configuration.
//
// Client provides:
//   - Fixed identifying User-Agent header
//   - Bounded connection/read timeout
//   - Streamed file download with progress tracking and a minimum-size
//     sanity check against disguised error pages
//
// Example usage:
//
//	client := NewClient()
//
//	// Fetch a table catalog
//	body, err := client.Get(ctx, "https://air-afother.github.io/osu-table/osu_mania_4k_final.json")
//
//	// Download an archive with progress
//	_, err = client.DownloadFile(ctx, dlURL, "/maps/set.osz", 200_000, func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client for catalog and archive fetches.
//
// The client is configured with:
//   - 30 second timeout
//   - "osu-downloader/1.0" User-Agent header
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "osu-downloader/1.0",
	}
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// -1 when the server did not declare a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header.
//
// Returns a *StatusError if the response status is not 200 OK, so
// callers can recover the status code with errors.As.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

// DownloadFile downloads a file to the specified path, streaming the
// body to disk in fixed-size chunks.
//
// If minSize is positive and the response declares a Content-Length
// below it, ErrUndersized is returned and no file is written. An absent
// Content-Length disables the check; the threshold is a heuristic
// against disguised error pages, not a content verification.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - minSize: Minimum acceptable declared body size, 0 to disable
//   - onProgress: Optional per-chunk callback with (bytesWritten, totalBytes);
//     pass nil to disable
//
// Returns the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, minSize int64, onProgress func(written, total int64)) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if minSize > 0 && resp.ContentLength >= 0 && resp.ContentLength < minSize {
		return 0, fmt.Errorf("%s declares %d bytes: %w", url, resp.ContentLength, ErrUndersized)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	buf := make([]byte, downloadChunkSize)
	return io.CopyBuffer(writer, resp.Body, buf)
}

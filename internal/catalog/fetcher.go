package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/air-afother/osu-table-downloader/internal/catalog/dto"
	httpclient "github.com/air-afother/osu-table-downloader/internal/http"
)

// FetchError reports a failed catalog retrieval: a transport failure,
// a non-success HTTP status, or a malformed JSON body. It records which
// source failed because a partial catalog cannot be trusted and the
// failure is fatal to the run.
type FetchError struct {
	// URL is the catalog that failed.
	URL string

	// Status is the HTTP status code, or 0 when the failure happened
	// before a status was received (transport error, bad JSON).
	Status int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch catalog %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch catalog %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves table catalogs over HTTP.
//
// A catalog is a JSON array of beatmap records. Records with missing or
// unparsable fields survive fetching; they are weeded out later during
// normalization so that one noisy record never fails a whole table.
type Fetcher struct {
	client *httpclient.Client
}

// NewFetcher creates a Fetcher using the given HTTP client.
func NewFetcher(client *httpclient.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads and decodes the catalog at url.
//
// Any failure is returned as a *FetchError naming the url, so callers
// can report which table's source broke.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]dto.JSONEntry, error) {
	body, err := f.client.Get(ctx, url)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, &FetchError{URL: url, Status: statusErr.Code, Err: err}
		}
		return nil, &FetchError{URL: url, Err: err}
	}

	var entries []dto.JSONEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decode catalog body: %w", err)}
	}

	return entries, nil
}

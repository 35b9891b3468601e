package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/air-afother/osu-table-downloader/internal/catalog/dto"
	httpclient "github.com/air-afother/osu-table-downloader/internal/http"
	"github.com/air-afother/osu-table-downloader/internal/model"
)

func rawEntries(t *testing.T, body string) []dto.JSONEntry {
	t.Helper()
	var entries []dto.JSONEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return entries
}

func TestNormalize(t *testing.T) {
	raw := rawEntries(t, `[
		{"title":"a","artist":"x","url":"u1","level":3,"md5":"h1"},
		{"title":"b","artist":"x","url":"u2","level":"3.5","md5":"h2"},
		{"title":"c","artist":"x","url":"u3","level":"???","md5":"h3"},
		{"title":"d","artist":"x","url":"u4","md5":"h4"},
		{"title":"e","artist":"x","url":"u5","level":9,"md5":"h5"}
	]`)

	got := Normalize(raw, model.RangeFilter{Table: "4K", MinLevel: 3, MaxLevel: 7})

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(got), got)
	}
	if got[0].MD5 != "h1" || got[1].MD5 != "h2" {
		t.Errorf("wrong entries kept: %+v", got)
	}
	if got[1].Level != 3.5 {
		t.Errorf("string level parsed as %v, want 3.5", got[1].Level)
	}
	for _, entry := range got {
		if entry.Level < 3 || entry.Level > 7 {
			t.Errorf("entry %q outside range: %v", entry.MD5, entry.Level)
		}
	}
}

func TestDedupe(t *testing.T) {
	entries := []model.TableEntry{
		{Title: "first", MD5: "a"},
		{Title: "dup", MD5: "a"},
		{Title: "second", MD5: "b"},
		{Title: "no hash"},
		{Title: "dup again", MD5: "b"},
	}

	got := Dedupe(entries)

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// First occurrence wins.
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("dedupe order wrong: %+v", got)
	}

	seen := map[string]bool{}
	for _, entry := range got {
		if seen[entry.MD5] {
			t.Errorf("duplicate hash %q survived dedupe", entry.MD5)
		}
		seen[entry.MD5] = true
	}

	// Idempotent.
	if again := Dedupe(got); len(again) != len(got) {
		t.Errorf("dedupe not idempotent: %d vs %d", len(again), len(got))
	}
}

func TestResolve(t *testing.T) {
	normalized := []model.TableEntry{
		{Title: "present", URL: "https://osu.ppy.sh/beatmapsets/1", MD5: "have"},
		{Title: "missing", URL: "https://osu.ppy.sh/beatmapsets/2", MD5: "want1"},
		{Title: "also missing", URL: "https://osu.ppy.sh/beatmapsets/3", MD5: "want2"},
	}
	inventory := map[string]struct{}{"have": {}, "unrelated": {}}

	worklist := Resolve(normalized, inventory)

	if len(worklist) != 2 {
		t.Fatalf("got %d work items, want 2", len(worklist))
	}
	if worklist[0].Entry.MD5 != "want1" || worklist[1].Entry.MD5 != "want2" {
		t.Errorf("worklist order wrong: %+v", worklist)
	}
	if worklist[0].BeatmapsetID != "2" {
		t.Errorf("BeatmapsetID = %q, want %q", worklist[0].BeatmapsetID, "2")
	}
}

func TestResolve_EmptyWhenAllPresent(t *testing.T) {
	normalized := []model.TableEntry{{MD5: "a"}, {MD5: "b"}}
	inventory := map[string]struct{}{"a": {}, "b": {}}
	if got := Resolve(normalized, inventory); len(got) != 0 {
		t.Errorf("expected empty worklist, got %+v", got)
	}
}

func TestResolve_KeepsEntriesWithoutBeatmapsetID(t *testing.T) {
	normalized := []model.TableEntry{{Title: "odd", URL: "https://example.com/x", MD5: "m"}}
	worklist := Resolve(normalized, nil)
	if len(worklist) != 1 {
		t.Fatalf("got %d items, want 1", len(worklist))
	}
	if worklist[0].BeatmapsetID != "" {
		t.Errorf("BeatmapsetID = %q, want empty", worklist[0].BeatmapsetID)
	}
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"title":"t","artist":"a","url":"u","level":"4","md5":"h"}]`)
	}))
	defer srv.Close()

	entries, err := NewFetcher(httpclient.NewClient()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(entries) != 1 || entries[0].MD5 != "h" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestFetcher_FetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusGone)
			},
			wantStatus: http.StatusGone,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"not":"an array"`)
			},
			wantStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewFetcher(httpclient.NewClient()).Fetch(context.Background(), srv.URL)
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fetchErr.URL != srv.URL {
				t.Errorf("FetchError.URL = %q, want %q", fetchErr.URL, srv.URL)
			}
			if fetchErr.Status != tt.wantStatus {
				t.Errorf("FetchError.Status = %d, want %d", fetchErr.Status, tt.wantStatus)
			}
		})
	}
}

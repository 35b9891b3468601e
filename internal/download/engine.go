package download

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	httpclient "github.com/air-afother/osu-table-downloader/internal/http"
	"github.com/air-afother/osu-table-downloader/internal/model"
)

// MinArchiveSize is the smallest declared Content-Length accepted from
// the download service. The service answers failures with short
// HTML/JSON bodies and a 200 status, so anything declared below this
// is treated as a disguised error page. The threshold is a heuristic,
// not a hash check.
const MinArchiveSize = 200_000

// Engine executes a download worklist against the beatmap download
// service.
//
// Items are processed strictly sequentially, both to respect the
// third-party service's rate limits and to keep progress and ETA
// accounting exact. A single item's failure never aborts the batch:
// missing assets and transient network errors are expected, and each
// is absorbed into that item's DownloadOutcome. Each item is attempted
// at most once per run.
type Engine struct {
	client  *httpclient.Client
	baseURL string
	logger  *slog.Logger

	// onBytes, when set, receives byte-level progress of the item
	// currently streaming.
	onBytes func(written, total int64)
}

// NewEngine creates an Engine downloading from baseURL (the beatmapset
// id is appended per item). logger may be nil.
func NewEngine(client *httpclient.Client, baseURL string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{client: client, baseURL: baseURL, logger: logger}
}

// SetByteProgress installs a callback receiving per-chunk progress of
// the in-flight download. It is invoked on the engine's goroutine.
func (e *Engine) SetByteProgress(fn func(written, total int64)) {
	e.onBytes = fn
}

// Run downloads every work item into targetDir and returns one outcome
// per item, in worklist order.
//
// onProgress, if non-nil, is invoked after every item — fetched or
// skipped — with the updated completed/total/elapsed counters, so the
// completed count reaches the total exactly once per run. Run only
// fails when targetDir cannot be created; per-item errors are recorded
// in the outcomes, never returned.
func (e *Engine) Run(ctx context.Context, worklist []model.WorkItem, targetDir string, onProgress model.ProgressFunc) ([]model.DownloadOutcome, error) {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, err
	}

	outcomes := make([]model.DownloadOutcome, 0, len(worklist))
	start := time.Now()

	for i, item := range worklist {
		outcome := e.downloadItem(ctx, item, targetDir)
		outcomes = append(outcomes, outcome)

		e.logger.Debug("worklist item finished",
			slog.String("title", item.Entry.Title),
			slog.String("beatmapset", item.BeatmapsetID),
			slog.String("outcome", outcome.String()),
		)

		if onProgress != nil {
			onProgress(model.ProgressSnapshot{
				Completed: i + 1,
				Total:     len(worklist),
				Elapsed:   time.Since(start),
			})
		}
	}

	return outcomes, nil
}

// downloadItem resolves a single work item to its outcome.
func (e *Engine) downloadItem(ctx context.Context, item model.WorkItem, targetDir string) model.DownloadOutcome {
	if item.BeatmapsetID == "" {
		return model.OutcomeSkippedNoID
	}

	dest := filepath.Join(targetDir, item.FileName)
	if _, err := os.Stat(dest); err == nil {
		return model.OutcomeSkippedExisting
	}

	url := e.baseURL + item.BeatmapsetID
	_, err := e.client.DownloadFile(ctx, url, dest, MinArchiveSize, e.onBytes)
	if err == nil {
		return model.OutcomeFetched
	}

	if errors.Is(err, httpclient.ErrUndersized) {
		return model.OutcomeSkippedUndersized
	}

	// A partial file would be mistaken for a finished download on the
	// next run, so drop whatever was written before the error.
	os.Remove(dest)
	e.logger.Debug("download failed",
		slog.String("url", url),
		slog.String("error", err.Error()),
	)
	return model.OutcomeSkippedError
}

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/air-afother/osu-table-downloader/internal/catalog"
	"github.com/air-afother/osu-table-downloader/internal/catalog/dto"
	"github.com/air-afother/osu-table-downloader/internal/config"
	"github.com/air-afother/osu-table-downloader/internal/model"
)

// State identifies the orchestrator's position in a run.
type State int

const (
	// StateIdle is the re-entrant rest state between runs.
	StateIdle State = iota

	// StateLoading covers inventory and catalog retrieval.
	StateLoading

	// StateConfirmPending waits on the external proceed/abort decision.
	StateConfirmPending

	// StateDownloading covers the download engine run.
	StateDownloading

	// StateExtracting covers archive extraction.
	StateExtracting

	// StateCancelled marks a declined confirmation on the way back to
	// idle.
	StateCancelled
)

// String returns a lowercase label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateConfirmPending:
		return "confirm-pending"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// InventoryProvider exposes the set of content hashes already present
// locally.
type InventoryProvider interface {
	ListHashes(ctx context.Context) (map[string]struct{}, error)
}

// CatalogFetcher retrieves a table catalog as raw records.
type CatalogFetcher interface {
	Fetch(ctx context.Context, url string) ([]dto.JSONEntry, error)
}

// Downloader executes a worklist against the download service.
type Downloader interface {
	Run(ctx context.Context, worklist []model.WorkItem, targetDir string, onProgress model.ProgressFunc) ([]model.DownloadOutcome, error)
}

// ArchiveExtractor unpacks archives under a directory.
type ArchiveExtractor interface {
	Extract(dir string, deleteAfter bool) error
}

// Request carries everything one run needs: the selected tables with
// their ranges (in selection order, which fixes dedup precedence), the
// target directory, and the extraction policy.
type Request struct {
	// Tables are the selected tables in selection order.
	Tables []config.Table

	// TargetDir receives the downloaded archives.
	TargetDir string

	// AutoExtract extracts immediately after downloading and deletes
	// the archives. When false, ExtractPrompt decides whether a
	// keep-the-archives extraction pass runs.
	AutoExtract bool
}

// Summary reports how a run ended.
type Summary struct {
	// Missing is the worklist size resolved during loading.
	Missing int

	// Outcomes holds one entry per worklist item, in order. Nil when
	// the run never reached downloading.
	Outcomes []model.DownloadOutcome

	// Elapsed is the download phase duration.
	Elapsed time.Duration

	// Cancelled is set when the confirmation was declined.
	Cancelled bool

	// NothingToDo is set when every entry in range was already present.
	NothingToDo bool

	// Extracted is set when an extraction pass ran.
	Extracted bool
}

// Orchestrator sequences one pipeline run: load inventory and catalogs,
// resolve the missing set, gate on confirmation, download, extract.
//
// The orchestrator holds no state across runs beyond its collaborators;
// Run always finishes back in StateIdle. The whole run executes on the
// calling goroutine — callers driving a UI run it on a background
// goroutine and marshal the callbacks themselves. Once downloading
// starts the run proceeds to completion; the only cooperative stop is
// declining the confirmation.
type Orchestrator struct {
	inventory InventoryProvider
	fetcher   CatalogFetcher
	engine    Downloader
	extractor ArchiveExtractor
	logger    *slog.Logger

	// Confirm is the ConfirmPending decision point: it receives the
	// missing count and returns whether to proceed. Nil proceeds.
	Confirm func(missing int) bool

	// ExtractPrompt is the optional post-download decision when
	// AutoExtract is off. Nil skips extraction.
	ExtractPrompt func() bool

	// OnProgress receives a snapshot after every worklist item.
	OnProgress model.ProgressFunc

	// OnState observes every state transition.
	OnState func(State)

	mu    sync.RWMutex
	state State
}

// New creates an Orchestrator from its collaborators. logger may be nil.
func New(inventory InventoryProvider, fetcher CatalogFetcher, engine Downloader, extractor ArchiveExtractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		inventory: inventory,
		fetcher:   fetcher,
		engine:    engine,
		extractor: extractor,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()

	o.logger.Debug("pipeline state",
		slog.String("from", prev.String()),
		slog.String("to", s.String()),
	)
	if o.OnState != nil {
		o.OnState(s)
	}
}

// Run executes one full pipeline pass.
//
// Fatal errors (unavailable inventory, any failed catalog fetch) abort
// the run and are returned after the state goes back to idle; per-item
// download failures never surface here, only in Summary.Outcomes.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Summary, error) {
	defer o.setState(StateIdle)

	o.setState(StateLoading)
	worklist, err := o.load(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(worklist) == 0 {
		o.logger.Info("all maps in the selected range are already present")
		return &Summary{NothingToDo: true}, nil
	}

	o.setState(StateConfirmPending)
	if o.Confirm != nil && !o.Confirm(len(worklist)) {
		o.setState(StateCancelled)
		o.logger.Info("download declined", slog.Int("missing", len(worklist)))
		return &Summary{Missing: len(worklist), Cancelled: true}, nil
	}

	o.setState(StateDownloading)
	start := time.Now()
	outcomes, err := o.engine.Run(ctx, worklist, req.TargetDir, o.OnProgress)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	o.logger.Info("download pass finished",
		slog.Int("items", len(outcomes)),
		slog.String("summary", model.FormatOutcomes(outcomes)),
		slog.Duration("elapsed", elapsed),
	)

	summary := &Summary{
		Missing:  len(worklist),
		Outcomes: outcomes,
		Elapsed:  elapsed,
	}

	extractNow, deleteAfter := o.extractionDecision(req)
	if extractNow {
		o.setState(StateExtracting)
		if err := o.extractor.Extract(req.TargetDir, deleteAfter); err != nil {
			// Extraction trouble never undoes a finished download pass.
			o.logger.Warn("extraction pass failed", slog.String("error", err.Error()))
		} else {
			summary.Extracted = true
		}
	}

	return summary, nil
}

// extractionDecision resolves the post-download extraction policy:
// auto-extract deletes the archives, the optional prompt keeps them.
func (o *Orchestrator) extractionDecision(req Request) (extractNow, deleteAfter bool) {
	if req.AutoExtract {
		return true, true
	}
	if o.ExtractPrompt != nil && o.ExtractPrompt() {
		return true, false
	}
	return false, false
}

// load reads the inventory, fetches every selected catalog, and
// resolves the missing set.
//
// Catalogs are fetched concurrently; only downloads and extractions
// must stay sequential. Results are slotted by table index so that
// normalization order always matches selection order. Any single fetch
// failure fails the whole load: a partial catalog set cannot be
// trusted.
func (o *Orchestrator) load(ctx context.Context, req Request) ([]model.WorkItem, error) {
	hashes, err := o.inventory.ListHashes(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("inventory loaded", slog.Int("hashes", len(hashes)))

	raw := make([][]dto.JSONEntry, len(req.Tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, table := range req.Tables {
		g.Go(func() error {
			entries, err := o.fetcher.Fetch(gctx, table.CatalogURL)
			if err != nil {
				return err
			}
			raw[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []model.TableEntry
	for i, table := range req.Tables {
		entries := catalog.Normalize(raw[i], table.Filter())
		o.logger.Debug("table normalized",
			slog.String("table", table.Name),
			slog.Int("raw", len(raw[i])),
			slog.Int("in_range", len(entries)),
		)
		combined = append(combined, entries...)
	}

	unique := catalog.Dedupe(combined)
	worklist := catalog.Resolve(unique, hashes)
	o.logger.Info("missing set resolved",
		slog.Int("unique", len(unique)),
		slog.Int("missing", len(worklist)),
	)
	return worklist, nil
}

package model

import (
	"fmt"
	"time"
)

// ProgressSnapshot is an immutable view of a download run, recomputed
// after every worklist item. Completed counts every attempted item,
// fetched or skipped, so it is monotonically non-decreasing and reaches
// Total exactly once per run.
type ProgressSnapshot struct {
	// Completed is the number of items attempted so far.
	Completed int

	// Total is the worklist size.
	Total int

	// Elapsed is wall-clock time since the run started.
	Elapsed time.Duration
}

// Fraction returns completion as a value in [0, 1]. An empty worklist
// reports 1.
func (p ProgressSnapshot) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// ETA estimates the remaining run time from the whole-run average time
// per item. The estimate is zero before the first item completes and
// volatile early in the run; it stabilizes as more items finish. There
// is no decay factor.
func (p ProgressSnapshot) ETA() time.Duration {
	if p.Completed == 0 {
		return 0
	}
	avg := p.Elapsed / time.Duration(p.Completed)
	return avg * time.Duration(p.Total-p.Completed)
}

// FormatETA renders the ETA as "Xm Ys".
func (p ProgressSnapshot) FormatETA() string {
	remaining := int(p.ETA().Seconds())
	return fmt.Sprintf("%dm %ds", remaining/60, remaining%60)
}

// String renders the snapshot as a status line like
// "3/10 maps | ETA: 1m 24s".
func (p ProgressSnapshot) String() string {
	return fmt.Sprintf("%d/%d maps | ETA: %s", p.Completed, p.Total, p.FormatETA())
}

// ProgressFunc receives a snapshot after every worklist item. It is
// invoked synchronously on the pipeline worker, at most once per item,
// in worklist order; consumers that touch UI state must marshal onto
// their own loop.
type ProgressFunc func(ProgressSnapshot)

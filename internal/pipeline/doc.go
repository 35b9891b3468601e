// Package pipeline sequences a full reconcile-and-fetch run.
//
// A run walks the state machine
//
//	Idle → Loading → ConfirmPending → Downloading → Extracting → Idle
//
// with Cancelled as the escape from ConfirmPending. Loading reads the
// local inventory and the selected table catalogs, normalizes and
// deduplicates them, and resolves the missing set; an empty missing
// set short-circuits straight back to Idle. The confirmation gate and
// the optional extract-now prompt are external boolean decision
// points — the package exposes them as callbacks and takes no stance
// on how they are answered.
//
// Fatal errors (inventory unavailable, any catalog fetch failing) abort
// the run; per-item download failures are absorbed into the outcome
// sequence and reported only as a batch summary.
package pipeline

// Package state holds the progress of the running publish job.
//
// # Overview
//
// The publish pipeline runs in its own goroutine and reports each step into a
// Store. The TUI reads a Snapshot on every tick and renders it. The Store is
// the only point where the two meet.
//
// # Concurrency Model
//
// All writers take the write lock; Snapshot takes the read lock and returns a
// copy whose Items slice and LastError are not shared with the Store. The
// zero Store is ready to use.
//
// # Job Lifecycle
//
//	Begin(items)      → PhaseCreating, every item pending
//	StartItem(i)      → PhaseUploading, item i uploading
//	FinishItem(i,...) → item i uploaded or failed
//	SetPhase(Saving)
//	Finish(url, err)  → PhaseDone or PhaseFailed
//
// A failed job keeps its items so the UI can show which files were rejected.
package state

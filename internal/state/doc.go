// Package state provides thread-safe state management for the submatch console.
//
// # Overview
//
// The Store is the meeting point between the background poller and the UI.
// The poller records each fetch it issues (BeginFetch) and then either applies
// the result (Update) or throws it away (Discard). The UI reads a cloned
// Snapshot on every tick.
//
//	Poller                          UI
//	BeginFetch() ──┐
//	               ├─ Update()  ──> Snapshot() ──> render
//	               └─ Discard()
//
// # Phases
//
//   - PhaseLoading: no data yet; tabs do not render
//   - PhaseReady: data present, nothing in flight
//   - PhaseRefreshing: data present while a newer fetch is outstanding
//
// # Updates
//
// A successful Update replaces the whole data snapshot. A failed Update keeps
// the previous data, records the error and bumps ConsecutiveFailures; two or
// more consecutive failures mark the snapshot offline. SetPinnedMatches is the
// one partial write and exists for local pin edits.
package state

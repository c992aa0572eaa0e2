// Package app wires configuration, the matching client, the poller, the
// shared store and the UI into the submatch console.
//
// # Overview
//
// Run is the composition root. It builds a matching.Client from the loaded
// config, restores user prefs, creates the state.Store and Poller, and runs
// the poller and the Bubble Tea program side by side in an errgroup. When
// either one returns, the other is cancelled.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> NewClient()        HTTP client for the matching endpoints
//	       ├─────> prefs.Load()       Theme, last tab, page sizes
//	       ├─────> state.Store{}      Shared snapshot container
//	       ├─────> Poller.Run()       Background polling (errgroup)
//	       └─────> ui.Run()           TUI (errgroup, blocks)
//
//	Poller:
//	┌─────────────────────────────────────────┐
//	│ Poll()                                  │
//	│  ├─> client.Get()       request handle  │
//	│  ├─> store.BeginFetch()                 │
//	│  └─> finish()           under p.mu      │
//	│       ├─> store.Update()   success/fail │
//	│       └─> store.Discard()  cancelled    │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The first poll runs immediately. Later polls run every interval, or
// interval * 2^failures (capped at 30s) while the server keeps failing. A tick
// does not wait for an outstanding poll, so requests may overlap.
//
// PinsChanged and MatcherRunScheduled cancel every outstanding request under
// the same lock that applies results, so a response that was cancelled never
// reaches the store. PinsChanged also writes the server's new pin list into
// the current snapshot before the next poll arrives.
//
// # Error Handling
//
// Client construction errors are fatal and returned from Run. Poll failures
// are logged at warn, keep the previous snapshot, and mark the console
// offline after repeated failures. Cancellations are logged at debug.
package app

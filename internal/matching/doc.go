// Package matching provides an HTTP client for the subscription matching
// endpoints of the management server.
//
// # Endpoints
//
//   - GET  /rhn/manager/subscription-matching/data: full matching snapshot
//   - POST /rhn/manager/subscription-matching/pins: add a pin
//   - POST /rhn/manager/subscription-matching/pins/{id}/delete: remove a pin
//   - POST /rhn/manager/subscription-matching/schedule-matcher-run
//
// Pin endpoints answer with the server's pin list after the change.
//
// # Request handles
//
// Client.Get starts a snapshot fetch on its own goroutine and returns a
// *Request. Cancel aborts the HTTP call and guarantees that Result reports
// ErrCancelled from then on, even if the response already arrived. Callers
// that apply results must check Cancelled under the same lock they use to
// cancel, so a late response can never overwrite newer local state.
//
// All requests set Accept, User-Agent and X-Request-ID headers, and use HTTP
// basic auth when a username is configured.
package matching

// Package ui provides the Bubble Tea console for subscription matching.
//
// # Layout
//
// The screen is a header (connection phase, server, last update, fetch
// error), a command bar, the tab container and the matcher run panel. The
// tab container is shown only once a snapshot with matcher data has
// arrived; the Pins and Messages labels carry a warning marker when a pin
// is unsatisfied or messages exist.
//
// # Tabs and history
//
// Each tab is a listview.Model over rows shaped by the tabs package. The
// active tab always mirrors the cursor of a nav.History: selecting a tab
// pushes its anchor, and [ and ] walk back and forward. Per-tab view state
// lives in the root model so filters, sort and page survive row refreshes.
//
// # Data flow
//
// The model never talks to the poller's fetches. A tick re-reads the
// store's snapshot; pin edits and matcher scheduling call the server from a
// command and then tell the poller, which cancels outstanding polls before
// the new pin list is applied.
//
// # Components
//
//   - app.go: Model, Update loop, commands and Run
//   - panes.go: generic adapter from listview.Model to a tab pane
//   - header.go: status header, tab bar and command bar
//   - matcher.go: matcher run panel
//   - pinform.go: modal form for new pins
//   - help.go, keys.go: key bindings and help overlay
//   - theme.go, surface.go: themes and background-safe rendering
package ui

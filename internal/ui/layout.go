package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// server address.
	LayoutCompactWidth = 100
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the store.
	DefaultUIInterval = 500 * time.Millisecond

	// ActionTimeout bounds pin edits and matcher scheduling requests.
	ActionTimeout = 10 * time.Second
)

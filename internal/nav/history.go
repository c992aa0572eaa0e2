// Package nav keeps the anchor history that selects the active dashboard tab.
//
// Anchors play the part of a document location hash: selecting a tab pushes
// its anchor, Back and Forward walk the history, and the active tab always
// mirrors the anchor under the cursor.
package nav

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownAnchor is returned when an anchor names no tab.
var ErrUnknownAnchor = errors.New("unknown anchor")

// History records visited anchors. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	known   []string
	entries []string
	cursor  int
}

// NewHistory starts a history at start. An empty or unknown start selects the
// first known anchor, reported through the returned error.
func NewHistory(known []string, start string) (*History, error) {
	if len(known) == 0 {
		return nil, fmt.Errorf("history needs at least one anchor")
	}
	h := &History{known: append([]string(nil), known...)}
	anchor, err := h.resolve(start)
	if err != nil {
		anchor = h.known[0]
	}
	h.entries = []string{anchor}
	if strings.TrimSpace(start) == "" {
		err = nil
	}
	return h, err
}

// Normalize returns the canonical form of an anchor: trimmed, lower case and
// with a leading '#'.
func Normalize(anchor string) string {
	a := strings.ToLower(strings.TrimSpace(anchor))
	if a == "" {
		return ""
	}
	if !strings.HasPrefix(a, "#") {
		a = "#" + a
	}
	return a
}

// Current returns the active anchor.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Index returns the position of the active anchor in the known list.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.indexOf(h.entries[h.cursor])
}

// Push makes anchor active and drops any forward entries. Pushing the active
// anchor again is a no-op.
func (h *History) Push(anchor string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	resolved, err := h.resolve(anchor)
	if err != nil {
		return err
	}
	if h.entries[h.cursor] == resolved {
		return nil
	}
	h.entries = append(h.entries[:h.cursor+1], resolved)
	h.cursor++
	return nil
}

// Back moves one entry back and reports whether it moved.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Forward moves one entry forward and reports whether it moved.
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) resolve(anchor string) (string, error) {
	a := Normalize(anchor)
	if h.indexOf(a) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownAnchor, anchor)
	}
	return a, nil
}

func (h *History) indexOf(anchor string) int {
	for i, k := range h.known {
		if k == anchor {
			return i
		}
	}
	return -1
}

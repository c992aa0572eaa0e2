package state

import (
	"sync"
	"time"

	"github.com/five82/submatch/internal/matching"
)

// Phase describes what the dashboard can show.
type Phase int

const (
	// PhaseLoading means no snapshot has arrived yet.
	PhaseLoading Phase = iota
	// PhaseReady means a snapshot is shown and no fetch is outstanding.
	PhaseReady
	// PhaseRefreshing means a snapshot is shown while a newer one is fetched.
	PhaseRefreshing
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "loading"
	}
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Data                *matching.Data
	Phase               Phase
	InFlight            int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// HasData reports whether a server snapshot is available.
func (s Snapshot) HasData() bool {
	return s.Data != nil
}

// IsOffline returns true when the server has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// BeginFetch records that a fetch has been issued.
func (s *Store) BeginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.InFlight++
}

// Discard records that an outstanding fetch ended without being applied.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

// Update applies a fetch result. On success the stored data is replaced
// wholesale. When err is non-nil the previous data is kept but the error is
// recorded for visibility.
func (s *Store) Update(data *matching.Data, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if data != nil {
		dup := data.Clone()
		s.snapshot.Data = &dup
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// SetPinnedMatches replaces the pin list of the current data in place. It
// returns false when there is no data to edit yet.
func (s *Store) SetPinnedMatches(pins []matching.PinnedMatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Data == nil {
		return false
	}
	s.snapshot.Data.PinnedMatches = matching.ClonePins(pins)
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.Data != nil {
		dup := s.snapshot.Data.Clone()
		snap.Data = &dup
	}
	snap.Phase = phaseOf(snap)
	return snap
}

func (s *Store) finishLocked() {
	if s.snapshot.InFlight > 0 {
		s.snapshot.InFlight--
	}
}

func phaseOf(snap Snapshot) Phase {
	switch {
	case snap.Data == nil:
		return PhaseLoading
	case snap.InFlight > 0:
		return PhaseRefreshing
	default:
		return PhaseReady
	}
}

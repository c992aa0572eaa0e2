package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/submatch/internal/matching"
)

func sampleData() *matching.Data {
	return &matching.Data{
		Subscriptions:        map[int64]matching.Subscription{1: {ID: 1, PartNumber: "A"}},
		PinnedMatches:        []matching.PinnedMatch{{ID: 1, SystemID: 1, SubscriptionID: 1, Status: "satisfied"}},
		MatcherDataAvailable: true,
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(sampleData(), nil)

	snap := s.Snapshot()
	if !snap.HasData() || snap.Data.Subscriptions[1].PartNumber != "A" {
		t.Fatalf("snapshot data = %#v, want subscription A", snap.Data)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Data.PinnedMatches[0].Status = "unsatisfied"
	snap2 := s.Snapshot()
	if snap2.Data.PinnedMatches[0].Status != "satisfied" {
		t.Fatalf("Snapshot should clone data; got status %q", snap2.Data.PinnedMatches[0].Status)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(sampleData(), nil)

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if !snap.HasData() || len(snap.Data.PinnedMatches) != 1 {
		t.Fatalf("data changed on error: got %#v", snap.Data)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != origErr {
		t.Fatalf("LastError = %v, want the stored error %v", snap.LastError, origErr)
	}
}

func TestStore_Phases(t *testing.T) {
	var s Store

	if got := s.Snapshot().Phase; got != PhaseLoading {
		t.Fatalf("initial Phase = %v, want loading", got)
	}

	s.BeginFetch()
	if got := s.Snapshot().Phase; got != PhaseLoading {
		t.Fatalf("Phase with first fetch in flight = %v, want loading", got)
	}
	s.Update(sampleData(), nil)
	if got := s.Snapshot().Phase; got != PhaseReady {
		t.Fatalf("Phase after first result = %v, want ready", got)
	}

	s.BeginFetch()
	if got := s.Snapshot().Phase; got != PhaseRefreshing {
		t.Fatalf("Phase during refresh = %v, want refreshing", got)
	}
	s.Discard()
	if got := s.Snapshot().Phase; got != PhaseReady {
		t.Fatalf("Phase after discard = %v, want ready", got)
	}

	// Extra discards never drive the counter negative.
	s.Discard()
	if got := s.Snapshot().InFlight; got != 0 {
		t.Fatalf("InFlight = %d, want 0", got)
	}
}

func TestStore_SetPinnedMatches(t *testing.T) {
	var s Store

	if s.SetPinnedMatches([]matching.PinnedMatch{{ID: 5}}) {
		t.Fatal("SetPinnedMatches without data = true, want false")
	}

	s.Update(sampleData(), nil)
	pins := []matching.PinnedMatch{{ID: 5, Status: "pending"}, {ID: 6, Status: "unsatisfied"}}
	if !s.SetPinnedMatches(pins) {
		t.Fatal("SetPinnedMatches = false, want true")
	}
	pins[0].Status = "mutated"

	snap := s.Snapshot()
	if len(snap.Data.PinnedMatches) != 2 || snap.Data.PinnedMatches[0].Status != "pending" {
		t.Fatalf("PinnedMatches = %#v, want the two edited pins", snap.Data.PinnedMatches)
	}
	if snap.Data.Subscriptions[1].PartNumber != "A" {
		t.Fatalf("pin edit must leave the rest of the snapshot alone")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("initial failures = %d offline=%v, want 0/false", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 1"))
	if snap = s.Snapshot(); snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	s.Update(nil, errors.New("fail 2"))
	if snap = s.Snapshot(); !snap.IsOffline() || snap.ConsecutiveFailures != 2 {
		t.Fatalf("failures = %d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(sampleData(), nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("failures = %d offline=%v after success, want 0/false", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

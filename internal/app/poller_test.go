package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type scriptedFetcher struct {
	mu      sync.Mutex
	release chan struct{}
	data    *matching.Data
	err     error
	calls   int
}

func newScriptedFetcher(data *matching.Data, err error) *scriptedFetcher {
	return &scriptedFetcher{release: make(chan struct{}), data: data, err: err}
}

func (f *scriptedFetcher) Get(ctx context.Context) *matching.Request {
	f.mu.Lock()
	f.calls++
	id := fmt.Sprintf("req-%d", f.calls)
	data, err := f.data, f.err
	f.mu.Unlock()
	return matching.Start(ctx, id, func(context.Context) (*matching.Data, error) {
		<-f.release
		return data, err
	})
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func seededStore(pins ...matching.PinnedMatch) *state.Store {
	store := &state.Store{}
	store.Update(&matching.Data{MatcherDataAvailable: true, PinnedMatches: pins}, nil)
	return store
}

func TestPoller_PinEditSurvivesLateResponse(t *testing.T) {
	stale := &matching.Data{
		MatcherDataAvailable: true,
		PinnedMatches:        []matching.PinnedMatch{{ID: 1, SystemID: 10, SubscriptionID: 100, Status: matching.PinStatusSatisfied}},
	}
	fetcher := newScriptedFetcher(stale, nil)
	store := seededStore(stale.PinnedMatches...)
	p := NewPoller(fetcher, store, time.Second, zerolog.Nop())

	p.Poll(context.Background())
	if got := p.InFlight(); got != 1 {
		t.Fatalf("InFlight = %d, want 1", got)
	}
	if phase := store.Snapshot().Phase; phase != state.PhaseRefreshing {
		t.Fatalf("Phase = %v, want refreshing", phase)
	}

	edited := []matching.PinnedMatch{{ID: 2, SystemID: 11, SubscriptionID: 101, Status: matching.PinStatusPending}}
	p.PinsChanged(edited)

	close(fetcher.release)
	p.Wait()

	snap := store.Snapshot()
	if snap.Phase != state.PhaseReady {
		t.Fatalf("Phase = %v, want ready", snap.Phase)
	}
	if len(snap.Data.PinnedMatches) != 1 || snap.Data.PinnedMatches[0].ID != 2 {
		t.Fatalf("PinnedMatches = %+v, want the local edit", snap.Data.PinnedMatches)
	}
	if p.InFlight() != 0 {
		t.Fatalf("InFlight = %d, want 0", p.InFlight())
	}
}

func TestPoller_MatcherRunDiscardsOutstandingPolls(t *testing.T) {
	fresh := &matching.Data{MatcherDataAvailable: true, Messages: []matching.Message{{Type: "unknown_cpu_count"}}}
	fetcher := newScriptedFetcher(fresh, nil)
	store := seededStore()
	p := NewPoller(fetcher, store, time.Second, zerolog.Nop())

	p.Poll(context.Background())
	p.Poll(context.Background())
	if got := p.InFlight(); got != 2 {
		t.Fatalf("InFlight = %d, want 2 overlapping polls", got)
	}
	p.MatcherRunScheduled()
	close(fetcher.release)
	p.Wait()

	snap := store.Snapshot()
	if len(snap.Data.Messages) != 0 {
		t.Fatalf("Messages = %+v, want cancelled responses discarded", snap.Data.Messages)
	}
	if snap.InFlight != 0 {
		t.Fatalf("store InFlight = %d, want 0", snap.InFlight)
	}
}

func TestPoller_SuccessReplacesSnapshot(t *testing.T) {
	fresh := &matching.Data{MatcherDataAvailable: true, UnmatchedProductIDs: []int64{7}}
	fetcher := newScriptedFetcher(fresh, nil)
	close(fetcher.release)
	store := &state.Store{}
	p := NewPoller(fetcher, store, time.Second, zerolog.Nop())

	p.Poll(context.Background())
	p.Wait()

	snap := store.Snapshot()
	if !snap.HasData() {
		t.Fatalf("expected data after successful poll")
	}
	if len(snap.Data.UnmatchedProductIDs) != 1 || snap.Data.UnmatchedProductIDs[0] != 7 {
		t.Fatalf("UnmatchedProductIDs = %v, want [7]", snap.Data.UnmatchedProductIDs)
	}
}

func TestPoller_FailureKeepsPreviousData(t *testing.T) {
	fetcher := newScriptedFetcher(nil, errors.New("connection refused"))
	close(fetcher.release)
	store := seededStore(matching.PinnedMatch{ID: 5})
	p := NewPoller(fetcher, store, time.Second, zerolog.Nop())

	p.Poll(context.Background())
	p.Wait()
	p.Poll(context.Background())
	p.Wait()

	snap := store.Snapshot()
	if !snap.HasData() || snap.Data.PinnedMatches[0].ID != 5 {
		t.Fatalf("expected previous data kept, got %+v", snap.Data)
	}
	if snap.LastError == nil {
		t.Fatalf("expected LastError to be recorded")
	}
	if !snap.IsOffline() {
		t.Fatalf("expected offline after two consecutive failures")
	}
	if got := p.nextDelay(); got != 4*time.Second {
		t.Fatalf("nextDelay = %v, want 4s after two failures", got)
	}
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	fetcher := newScriptedFetcher(&matching.Data{}, nil)
	close(fetcher.release)
	store := &state.Store{}
	p := NewPoller(fetcher, store, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for fetcher.Calls() < 2 {
		select {
		case <-deadline:
			t.Fatalf("poller did not tick; calls = %d", fetcher.Calls())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if p.InFlight() != 0 {
		t.Fatalf("InFlight = %d after Run returned, want 0", p.InFlight())
	}
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(newScriptedFetcher(nil, nil), &state.Store{}, 0, zerolog.Nop())
	if p.Interval() != defaultPollInterval {
		t.Fatalf("Interval = %v, want %v", p.Interval(), defaultPollInterval)
	}
}

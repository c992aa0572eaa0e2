package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/submatch/internal/matching"
	"github.com/five82/submatch/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns the poll delay after the given number of
// consecutive failures: base * 2^failures, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// Poller refreshes the store from the server. Every fetch it starts stays in
// its in-flight set until the response is applied or discarded; cancelling
// and applying happen under the same lock.
type Poller struct {
	client   matching.Fetcher
	store    *state.Store
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	inflight map[*matching.Request]struct{}
	wg       sync.WaitGroup
}

// NewPoller builds a poller. A non-positive interval uses the default.
func NewPoller(client matching.Fetcher, store *state.Store, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		inflight: make(map[*matching.Request]struct{}),
	}
}

// Interval returns the configured delay between polls.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run polls immediately and then on every tick until ctx ends. A tick does
// not wait for an outstanding fetch. It returns after the last response was
// handled.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()

	p.Poll(ctx)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.cancelAll()
			return nil
		case <-timer.C:
		}
		p.Poll(ctx)
		timer.Reset(p.nextDelay())
	}
}

// Poll starts one fetch and applies its result in the background.
func (p *Poller) Poll(ctx context.Context) {
	p.mu.Lock()
	req := p.client.Get(ctx)
	p.inflight[req] = struct{}{}
	p.store.BeginFetch()
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		data, err := req.Result(ctx)
		p.finish(req, data, err)
	}()
}

// PinsChanged cancels every outstanding poll and applies the server's new pin
// list to the current snapshot.
func (p *Poller) PinsChanged(pins []matching.PinnedMatch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	if !p.store.SetPinnedMatches(pins) {
		p.logger.Debug().Msg("pin change before first snapshot; waiting for next poll")
	}
}

// MatcherRunScheduled cancels every outstanding poll.
func (p *Poller) MatcherRunScheduled() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

// InFlight reports how many fetches are outstanding.
func (p *Poller) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

// Wait blocks until every started fetch has been applied or discarded.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) finish(req *matching.Request, data *matching.Data, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, req)

	switch {
	case req.Cancelled() || errors.Is(err, matching.ErrCancelled):
		p.store.Discard()
		p.logger.Debug().Str("request_id", req.ID()).Msg("discarded cancelled poll")
	case errors.Is(err, context.Canceled):
		p.store.Discard()
	case err != nil:
		p.store.Update(nil, err)
		p.logger.Warn().Err(err).Str("request_id", req.ID()).Msg("poll failed")
	default:
		p.store.Update(data, nil)
	}
}

func (p *Poller) cancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

func (p *Poller) cancelLocked() {
	for req := range p.inflight {
		req.Cancel()
	}
}

func (p *Poller) nextDelay() time.Duration {
	return calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval)
}

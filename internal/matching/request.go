package matching

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned by Request.Result after Cancel.
var ErrCancelled = errors.New("request cancelled")

// Request is a handle to one in-flight data fetch. Once Cancel has been
// called, Result never yields data, even when the response already arrived.
type Request struct {
	id        string
	done      chan struct{}
	data      *Data
	err       error
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Start runs fetch on its own goroutine and returns a handle to it.
func Start(ctx context.Context, id string, fetch func(context.Context) (*Data, error)) *Request {
	reqCtx, cancel := context.WithCancel(ctx)
	r := &Request{
		id:     id,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer cancel()
		data, err := fetch(reqCtx)
		r.data, r.err = data, err
		close(r.done)
	}()
	return r
}

// ID identifies the request in logs and in the X-Request-ID header.
func (r *Request) ID() string {
	return r.id
}

// Done is closed once the fetch finished, whether or not it was cancelled.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Cancel aborts the fetch. It is safe to call more than once and after the
// fetch completed.
func (r *Request) Cancel() {
	if r.cancelled.CompareAndSwap(false, true) {
		r.cancel()
	}
}

// Cancelled reports whether Cancel was called.
func (r *Request) Cancelled() bool {
	return r.cancelled.Load()
}

// Result waits for the fetch to finish. It returns ErrCancelled when the
// request was cancelled, and ctx.Err() when ctx ends first.
func (r *Request) Result(ctx context.Context) (*Data, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
	}
	if r.Cancelled() {
		return nil, ErrCancelled
	}
	return r.data, r.err
}

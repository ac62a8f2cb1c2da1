// Package watch turns store mutations into live snapshot sequences.
package watch

import (
	"context"
	"sync"

	"github.com/and161185/taskmaster/internal/errs"
	"github.com/and161185/taskmaster/internal/result"
)

// Hub fans change signals out to subscribers. The zero value is ready to use.
// Each subscriber has a one-slot buffer, so pending signals coalesce.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// Subscribe registers a subscriber. The returned func unregisters it and is idempotent.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[chan struct{}]struct{})
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Notify signals every subscriber without blocking.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Observe emits Loading, then a snapshot from load, then a fresh snapshot after
// every change signal. Load failures are emitted as storage errors and observation goes on.
// The channel is closed once ctx is done.
func Observe[T any](
	ctx context.Context,
	subscribe func() (<-chan struct{}, func()),
	load func(context.Context) (T, error),
) <-chan result.Result[T] {
	out := make(chan result.Result[T])
	changes, cancel := subscribe()

	go func() {
		defer close(out)
		defer cancel()

		send := func(r result.Result[T]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(result.Loading[T]()) {
			return
		}
		for {
			v, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			r := result.Success(v)
			if err != nil {
				r = result.Failure[T](errs.Storage(err))
			}
			if !send(r) {
				return
			}
			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Single emits one result and closes.
func Single[T any](r result.Result[T]) <-chan result.Result[T] {
	out := make(chan result.Result[T], 1)
	out <- r
	close(out)
	return out
}

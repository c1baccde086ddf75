// Package debounce provides a generic quiet-period gate: a rapidly changing
// input is coalesced into a single downstream emission once it has been
// stable for the configured delay. It throttles how often the search engine
// runs against keystroke-level query changes.
package debounce

import (
	"sync"
	"time"

	"task-manager-be/internal/pkg/clock"
)

// Debouncer delays emissions of the most recent value. Any new value seen
// before the delay elapses cancels the pending emission and restarts the
// timer, so a burst yields exactly one emission carrying the last value.
type Debouncer[T any] struct {
	delay time.Duration
	clk   clock.Clock
	emit  func(T)

	mu      sync.Mutex
	pending clock.Timer
	gen     uint64
	stopped bool
}

// New builds a debouncer that calls emit on the timer goroutine after the
// input has been quiet for delay.
func New[T any](delay time.Duration, clk clock.Clock, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, clk: clk, emit: emit}
}

// Set observes a new input value. It supersedes any value still waiting to
// be emitted; superseded values are dropped, never queued.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	// The previous timer may have fired already and be parked on d.mu, in
	// which case the Stop above was a no-op. Bumping the generation makes
	// that callback a stale one: it must neither emit its superseded value
	// nor clear the handle this Set is about to install.
	d.gen++
	gen := d.gen
	d.pending = d.clk.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		d.emit(value)
	})
}

// Stop cancels any pending emission and refuses further input. It must be
// called on teardown of the consuming context so no timer fires into a dead
// consumer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// Pending reports whether an emission is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

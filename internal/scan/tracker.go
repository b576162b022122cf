package scan

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker counts in-flight scan tasks so a report can wait for them instead
// of guessing a delay.
type Tracker struct {
	wg      sync.WaitGroup
	pending atomic.Int64
}

// Go runs fn in its own goroutine and tracks it until it returns.
func (t *Tracker) Go(fn func()) {
	t.wg.Add(1)
	t.pending.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.pending.Add(-1)
		fn()
	}()
}

// Pending returns the number of tasks still running.
func (t *Tracker) Pending() int { return int(t.pending.Load()) }

// Wait blocks until every tracked task has returned or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

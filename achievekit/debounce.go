package achievekit

import (
	"context"
	"sync"
)

// debouncer holds at most one pending task. Starting a task cancels the
// previous one and waits for it to return before the new one runs, so the
// last caller wins.
type debouncer struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Run cancels any pending task and starts fn in its own goroutine.
func (d *debouncer) Run(parent context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	d.cancel, d.done = cancel, done
	go func() {
		defer close(done)
		defer cancel()
		fn(ctx)
	}()
}

// Stop cancels the pending task, if any, and waits for it to exit.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Wait blocks until the pending task, if any, has returned.
func (d *debouncer) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (d *debouncer) stopLocked() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	d.cancel, d.done = nil, nil
}

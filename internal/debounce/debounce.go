package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDelay is the pause after the last keystroke before a search runs.
const DefaultDelay = 300 * time.Millisecond

// ErrSuperseded is returned to a waiter replaced by a newer call with the same key.
var ErrSuperseded = errors.New("superseded by a newer request")

type waiter struct {
	timer      *time.Timer
	fired      chan struct{}
	superseded chan struct{}
}

// Debouncer delays work per key. Every call restarts the delay for its key and
// cancels the call it replaces.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	waiting map[string]*waiter
}

// New creates a debouncer. A non-positive delay falls back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:   delay,
		waiting: make(map[string]*waiter),
	}
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Wait blocks until the delay has passed without another Wait for key.
// It returns ErrSuperseded when a newer call took over, or the context error.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	w := &waiter{
		fired:      make(chan struct{}),
		superseded: make(chan struct{}),
	}

	d.mu.Lock()
	if prev, ok := d.waiting[key]; ok {
		prev.timer.Stop()
		close(prev.superseded)
	}
	w.timer = time.AfterFunc(d.delay, func() { close(w.fired) })
	d.waiting[key] = w
	d.mu.Unlock()

	select {
	case <-w.fired:
		d.release(key, w)
		return nil
	case <-w.superseded:
		return ErrSuperseded
	case <-ctx.Done():
		w.timer.Stop()
		d.release(key, w)
		return ctx.Err()
	}
}

// Do waits for key and then runs fn.
func (d *Debouncer) Do(ctx context.Context, key string, fn func() error) error {
	if err := d.Wait(ctx, key); err != nil {
		return err
	}
	return fn()
}

// Pending reports how many keys have a call waiting.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiting)
}

func (d *Debouncer) release(key string, w *waiter) {
	d.mu.Lock()
	if d.waiting[key] == w {
		delete(d.waiting, key)
	}
	d.mu.Unlock()
}

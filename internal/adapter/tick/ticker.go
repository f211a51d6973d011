// Package tick provides periodic tick sources for the frame animator.
package tick

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// Dispatcher runs fn on the thread that owns the display.
// The UI passes fyne.Do; headless callers pass nil to run ticks on the timer goroutine.
type Dispatcher func(fn func())

// Ticker delivers ticks from a time.Ticker goroutine through a Dispatcher.
//
// At most one tick is in flight: if the previous handler call has not
// finished when the timer fires, the tick is dropped. Stop does not wait for
// an in-flight tick, so a handler may stop its own ticker; use Wait to join
// the timer goroutine.
type Ticker struct {
	interval time.Duration
	dispatch Dispatcher

	mu      sync.Mutex
	stop    chan struct{}
	running bool
	gen     uint64
	wg      sync.WaitGroup

	inFlight atomic.Bool
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration, dispatch Dispatcher) *Ticker {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Ticker{
		interval: interval,
		dispatch: dispatch,
	}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start begins delivering ticks to fn, replacing any previous handler.
func (t *Ticker) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		close(t.stop)
	}
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.running = true

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return

			case <-ticker.C:
				if !t.inFlight.CompareAndSwap(false, true) {
					continue
				}
				t.dispatch(func() {
					defer t.inFlight.Store(false)
					if !t.current(gen) {
						return
					}
					fn()
				})
			}
		}
	}()
}

// current reports whether gen is still the active run.
func (t *Ticker) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && t.gen == gen
}

// Stop halts ticks. Ticks already dispatched but not yet started are skipped.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	close(t.stop)
	t.running = false
}

// Running reports whether ticks are being delivered.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Wait blocks until the timer goroutine of every stopped run has exited.
// It must not be called from a tick handler.
func (t *Ticker) Wait() {
	t.wg.Wait()
}

var _ ports.TickSource = (*Ticker)(nil)

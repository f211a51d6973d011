package tick

import (
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// Manual is a TickSource driven by explicit Tick calls.
// It is used by tests and by the headless renderer.
type Manual struct {
	mu      sync.Mutex
	fn      func()
	running bool
	starts  int
	stops   int
}

// NewManual creates a stopped manual tick source.
func NewManual() *Manual {
	return &Manual{}
}

// Start records fn as the tick handler.
func (m *Manual) Start(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.running = true
	m.starts++
}

// Stop halts ticks.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.stops++
	}
	m.running = false
}

// Running reports whether Tick delivers to the handler.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Tick invokes the handler once if running. It returns false when stopped.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	fn, running := m.fn, m.running
	m.mu.Unlock()

	if !running || fn == nil {
		return false
	}
	fn()
	return true
}

// Starts returns how many times Start was called.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Stops returns how many running periods were ended by Stop.
func (m *Manual) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

var _ ports.TickSource = (*Manual)(nil)

// Package mock provides in-memory implementations of the audio ports.
// They are used for testing services and for running the UI without a sound device.
package mock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// Engine is a mock implementation of the PlaybackEngine interface.
// It simulates playback in memory; the position only moves through
// SetPosition or SimulateProgress.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	// Dependencies
	logger *slog.Logger
	bus    ports.EventBus

	// State
	buffer   *domain.AudioBuffer
	position time.Duration
	volume   float64
	status   domain.PlaybackStatus
	shutdown bool
	mu       sync.RWMutex

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool

	// Call counters
	playCalls  int
	pauseCalls int
	stopCalls  int
}

// NewEngine creates a new mock playback engine.
// bus may be nil; when set, reaching the end publishes PlaybackCompletedEvent.
func NewEngine(bus ports.EventBus) *Engine {
	return &Engine{
		bus:    bus,
		volume: 1.0,
	}
}

// SetLogger sets the logger for this engine.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailLoad configures the mock to fail loading buffers (for testing).
func (m *Engine) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback (for testing).
func (m *Engine) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// Load replaces the current buffer.
func (m *Engine) Load(buf *domain.AudioBuffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return domain.ErrNotInitialized
	}
	if m.failLoad {
		return domain.NewAudioEngineError("load", "mock load failed", nil)
	}
	if buf == nil {
		return domain.ErrNothingLoaded
	}

	m.buffer = buf
	m.position = 0
	m.status = domain.StatusStopped
	return nil
}

// Play starts or resumes playback.
func (m *Engine) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.playCalls++
	if m.failPlay {
		return domain.NewAudioEngineError("play", "mock play failed", nil)
	}
	if m.buffer == nil {
		return domain.ErrNothingLoaded
	}

	if m.status == domain.StatusStopped {
		m.position = 0
	}
	m.status = domain.StatusPlaying
	return nil
}

// Pause pauses playback.
func (m *Engine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pauseCalls++
	if m.buffer == nil {
		return domain.ErrNothingLoaded
	}
	if m.status == domain.StatusPlaying {
		m.status = domain.StatusPaused
	}
	return nil
}

// Stop stops playback and rewinds.
func (m *Engine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCalls++
	m.status = domain.StatusStopped
	m.position = 0
	return nil
}

// SetVolume sets the volume.
func (m *Engine) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

// Volume returns the last volume set.
func (m *Engine) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Duration returns the length of the loaded buffer.
func (m *Engine) Duration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.buffer == nil {
		return 0
	}
	return m.buffer.Duration()
}

// Status returns the playback status.
func (m *Engine) Status() domain.PlaybackStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// CurrentTime returns the simulated position in seconds.
func (m *Engine) CurrentTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position.Seconds()
}

// IsPlaying returns true while the status is playing.
func (m *Engine) IsPlaying() bool {
	return m.Status() == domain.StatusPlaying
}

// AtEnd returns true when the position has reached the buffer duration.
func (m *Engine) AtEnd() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffer != nil && m.position >= m.buffer.Duration()
}

// Shutdown releases the buffer.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return domain.ErrNotInitialized
	}
	m.shutdown = true
	m.buffer = nil
	m.status = domain.StatusStopped
	return nil
}

// SetPosition moves the simulated cursor.
func (m *Engine) SetPosition(position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = position
}

// SimulateProgress advances the cursor while playing. When the end is
// reached the engine stops and PlaybackCompletedEvent is published.
func (m *Engine) SimulateProgress(d time.Duration) {
	m.mu.Lock()
	if m.status != domain.StatusPlaying || m.buffer == nil {
		m.mu.Unlock()
		return
	}
	m.position += d
	completed := false
	if total := m.buffer.Duration(); m.position >= total {
		m.position = total
		m.status = domain.StatusStopped
		completed = true
	}
	bus := m.bus
	m.mu.Unlock()

	if completed && bus != nil {
		bus.Publish(domain.NewPlaybackCompletedEvent())
	}
}

// Calls returns how many times Play, Pause and Stop were called.
func (m *Engine) Calls() (play, pause, stop int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playCalls, m.pauseCalls, m.stopCalls
}

// Buffer returns the loaded buffer.
func (m *Engine) Buffer() *domain.AudioBuffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffer
}

// Verify interface implementation
var _ ports.PlaybackEngine = (*Engine)(nil)

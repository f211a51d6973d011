package oto

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// monitorInterval is how often the engine checks for the end of the stream.
const monitorInterval = 50 * time.Millisecond

// Engine plays AudioBuffers through the shared oto context.
//
// A monitor goroutine runs while a stream is active. When the stream has
// been fully played it switches the engine to stopped and publishes
// PlaybackCompletedEvent.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	// Dependencies
	logger *slog.Logger
	bus    ports.EventBus
	ctx    *oto.Context

	// State
	buffer   *domain.AudioBuffer
	reader   *pcmReader
	player   *oto.Player
	status   domain.PlaybackStatus
	volume   float64
	finished bool
	shutdown bool
	mu       sync.Mutex

	// Monitor goroutine
	monitorStop chan struct{}
	wg          sync.WaitGroup
}

// NewEngine opens the audio device and creates an engine.
func NewEngine(logger *slog.Logger, bus ports.EventBus) (*Engine, error) {
	ctx, err := initContext()
	if err != nil {
		return nil, domain.NewAudioEngineError("init", "failed to open audio device", err)
	}
	logger.Debug("audio device ready", slog.Int("sample_rate", SampleRate))
	return &Engine{
		logger: logger,
		bus:    bus,
		ctx:    ctx,
		volume: 1.0,
	}, nil
}

// Load replaces the current stream with buf. Playback is stopped.
func (e *Engine) Load(buf *domain.AudioBuffer) error {
	if buf == nil {
		return domain.ErrNothingLoaded
	}
	e.haltMonitor()

	data := encodePCM(buf)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return domain.ErrNotInitialized
	}
	e.pausePlayerLocked()
	e.buffer = buf
	e.reader = newPCMReader(data)
	e.status = domain.StatusStopped
	e.finished = false

	e.logger.Debug("stream loaded", slog.Int("bytes", len(data)))
	return nil
}

// Play starts playback from the beginning, or resumes after Pause.
func (e *Engine) Play() error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return domain.ErrNotInitialized
	}
	if e.reader == nil {
		e.mu.Unlock()
		return domain.ErrNothingLoaded
	}

	switch e.status {
	case domain.StatusPlaying:
		e.mu.Unlock()
		return nil
	case domain.StatusPaused:
		e.player.Play()
		e.status = domain.StatusPlaying
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	// Starting from stopped: a previous monitor must be gone first.
	e.haltMonitor()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reader == nil || e.status != domain.StatusStopped {
		return nil
	}

	e.reader = newPCMReader(e.reader.data)
	e.player = e.ctx.NewPlayer(e.reader)
	e.player.SetVolume(e.volume)
	e.player.Play()
	if err := e.player.Err(); err != nil {
		e.player = nil
		return domain.NewAudioEngineError("play", "failed to start player", err)
	}
	e.status = domain.StatusPlaying
	e.finished = false

	stop := make(chan struct{})
	e.monitorStop = stop
	e.wg.Add(1)
	go e.monitor(stop)
	return nil
}

// Pause pauses playback. The position is kept.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reader == nil {
		return domain.ErrNothingLoaded
	}
	if e.status == domain.StatusPlaying {
		e.player.Pause()
		e.status = domain.StatusPaused
	}
	return nil
}

// Stop stops playback and rewinds to the start.
func (e *Engine) Stop() error {
	e.haltMonitor()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pausePlayerLocked()
	e.status = domain.StatusStopped
	e.finished = false
	return nil
}

// SetVolume sets the output volume (0.0 to 1.0).
func (e *Engine) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
	if e.player != nil {
		e.player.SetVolume(volume)
	}
	return nil
}

// Duration returns the length of the loaded buffer.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return 0
	}
	return e.buffer.Duration()
}

// Status returns the playback status.
func (e *Engine) Status() domain.PlaybackStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// CurrentTime returns the audible position in seconds: bytes handed to the
// device minus what is still queued in its buffer.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTimeLocked()
}

func (e *Engine) currentTimeLocked() float64 {
	if e.reader == nil {
		return 0
	}
	if e.finished {
		return bytesToSeconds(e.reader.Len())
	}
	if e.player == nil {
		return 0
	}
	return bytesToSeconds(e.reader.Pos() - int64(e.player.BufferedSize()))
}

// IsPlaying reports whether audio is being played.
func (e *Engine) IsPlaying() bool {
	return e.Status() == domain.StatusPlaying
}

// AtEnd reports whether the whole stream has been played.
func (e *Engine) AtEnd() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.atEndLocked()
}

func (e *Engine) atEndLocked() bool {
	if e.reader == nil {
		return false
	}
	if e.finished {
		return true
	}
	return e.player != nil && e.reader.Pos() >= e.reader.Len() && e.player.BufferedSize() == 0
}

// Shutdown stops playback. The engine cannot be used afterwards.
func (e *Engine) Shutdown() error {
	e.haltMonitor()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return domain.ErrNotInitialized
	}
	e.pausePlayerLocked()
	e.shutdown = true
	e.status = domain.StatusStopped
	e.buffer = nil
	e.reader = nil
	e.logger.Debug("audio engine shut down")
	return nil
}

// pausePlayerLocked silences and drops the current player. Caller holds mu.
func (e *Engine) pausePlayerLocked() {
	if e.player != nil {
		e.player.Pause()
		e.player = nil
	}
}

// haltMonitor stops the monitor goroutine and waits for it. Must be called
// without holding mu.
func (e *Engine) haltMonitor() {
	e.mu.Lock()
	stop := e.monitorStop
	e.monitorStop = nil
	e.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	e.wg.Wait()
}

// monitor polls for the end of the stream until stop is closed.
// Completion is published after the goroutine is marked done, so bus
// handlers may call back into the engine.
func (e *Engine) monitor(stop <-chan struct{}) {
	completed := e.watch(stop)
	e.wg.Done()

	if completed && e.bus != nil {
		e.logger.Debug("playback completed")
		e.bus.Publish(domain.NewPlaybackCompletedEvent())
	}
}

func (e *Engine) watch(stop <-chan struct{}) bool {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return false
		case <-ticker.C:
			e.mu.Lock()
			if e.status == domain.StatusPlaying && e.atEndLocked() {
				e.finished = true
				e.status = domain.StatusStopped
				e.pausePlayerLocked()
				e.monitorStop = nil
				e.mu.Unlock()
				return true
			}
			e.mu.Unlock()
		}
	}
}

// Verify interface implementation
var _ ports.PlaybackEngine = (*Engine)(nil)

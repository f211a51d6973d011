package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// AnimatorConfig holds the per-session display parameters.
type AnimatorConfig struct {
	WindowMs        float64
	Budget          int
	Decimation      dsp.DecimationMode
	TransformSize   int
	SmoothingWindow int
	FloorDB         float64
	Hann            bool
	// MinHz is the lower bound of the spectrum axis
	MinHz float64
}

// DefaultAnimatorConfig returns the analyzer defaults.
func DefaultAnimatorConfig() AnimatorConfig {
	return AnimatorConfig{
		WindowMs:        2000,
		Budget:          4000,
		Decimation:      dsp.DecimatePeak,
		TransformSize:   dsp.DefaultTransformSize,
		SmoothingWindow: dsp.DefaultSmoothingWindow,
		FloorDB:         dsp.DefaultFloorDB,
		MinHz:           20,
	}
}

// animationSession is the state of one playback session.
type animationSession struct {
	buffer    *domain.AudioBuffer
	samples   []float64
	extractor *dsp.Extractor
	spectrum  *dsp.SpectrumComputer
}

// FrameAnimator renders the scope display for the playback cursor on every tick.
//
// State machine: Stopped -> Running <-> Paused, and any state -> Stopped.
// A failing frame stops the animator instead of propagating out of OnTick.
//
// Thread-safety: all methods are safe for concurrent use. Events are
// published after the internal lock is released.
type FrameAnimator struct {
	// Dependencies (injected)
	logger  *slog.Logger
	surface ports.RenderSurface
	clock   ports.PlaybackClock
	ticks   ports.TickSource
	bus     ports.EventBus

	mu      sync.Mutex
	cfg     AnimatorConfig
	state   domain.AnimatorState
	session *animationSession
	frames  uint64
}

// NewFrameAnimator creates a stopped animator.
func NewFrameAnimator(
	logger *slog.Logger,
	cfg AnimatorConfig,
	surface ports.RenderSurface,
	clock ports.PlaybackClock,
	ticks ports.TickSource,
	bus ports.EventBus,
) *FrameAnimator {
	return &FrameAnimator{
		logger:  logger,
		cfg:     cfg,
		surface: surface,
		clock:   clock,
		ticks:   ticks,
		bus:     bus,
		state:   domain.AnimatorStopped,
	}
}

// State returns the current state.
func (a *FrameAnimator) State() domain.AnimatorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Frames returns how many frames have been rendered since creation.
func (a *FrameAnimator) Frames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// SetDecimation changes the decimation mode used from the next session on.
func (a *FrameAnimator) SetDecimation(mode dsp.DecimationMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Decimation = mode
}

// Start begins a session for buf: the background is captured and ticks start.
func (a *FrameAnimator) Start(buf *domain.AudioBuffer) error {
	a.mu.Lock()

	if a.state != domain.AnimatorStopped {
		state := a.state
		a.mu.Unlock()
		return fmt.Errorf("start from %s: %w", state, domain.ErrInvalidTransition)
	}
	if buf == nil {
		a.mu.Unlock()
		return domain.ErrNoSignal
	}

	session, err := a.newSession(buf)
	if err != nil {
		a.mu.Unlock()
		return err
	}

	a.surface.SetWaveLimits(a.cfg.WindowMs)
	a.surface.SetSpectrumLimits(a.cfg.MinHz, float64(buf.SampleRate)/2)
	a.surface.CaptureBackground()

	a.session = session
	from := a.transition(domain.AnimatorRunning)
	a.ticks.Start(a.OnTick)
	a.mu.Unlock()

	a.logger.Debug("animator started",
		slog.Int("sample_rate", buf.SampleRate),
		slog.Int("frames", buf.Frames()))
	a.bus.Publish(domain.NewAnimatorStateChangedEvent(from, domain.AnimatorRunning, nil))
	return nil
}

// OnTick renders one frame. It is a no-op unless the animator is running.
// When the clock reports the end of the track, the animator stops after
// rendering the final frame.
func (a *FrameAnimator) OnTick() {
	a.mu.Lock()
	if a.state != domain.AnimatorRunning || a.session == nil {
		a.mu.Unlock()
		return
	}

	err := a.renderFrame(a.session)
	if err == nil {
		a.frames++
		if !a.clock.AtEnd() {
			a.mu.Unlock()
			return
		}
	}

	a.ticks.Stop()
	a.session = nil
	from := a.transition(domain.AnimatorStopped)
	a.mu.Unlock()

	if err != nil {
		a.logger.Error("frame failed, stopping animator", slog.Any("error", err))
	} else {
		a.logger.Debug("end of track, animator stopped")
	}
	a.bus.Publish(domain.NewAnimatorStateChangedEvent(from, domain.AnimatorStopped, err))
}

// Pause suspends ticks; the last frame stays on screen.
func (a *FrameAnimator) Pause() error {
	a.mu.Lock()
	if a.state != domain.AnimatorRunning {
		state := a.state
		a.mu.Unlock()
		return fmt.Errorf("pause from %s: %w", state, domain.ErrInvalidTransition)
	}
	a.ticks.Stop()
	from := a.transition(domain.AnimatorPaused)
	a.mu.Unlock()

	a.bus.Publish(domain.NewAnimatorStateChangedEvent(from, domain.AnimatorPaused, nil))
	return nil
}

// Resume restarts ticks after Pause.
func (a *FrameAnimator) Resume() error {
	a.mu.Lock()
	if a.state != domain.AnimatorPaused {
		state := a.state
		a.mu.Unlock()
		return fmt.Errorf("resume from %s: %w", state, domain.ErrInvalidTransition)
	}
	from := a.transition(domain.AnimatorRunning)
	a.ticks.Start(a.OnTick)
	a.mu.Unlock()

	a.bus.Publish(domain.NewAnimatorStateChangedEvent(from, domain.AnimatorRunning, nil))
	return nil
}

// Stop ends the session from any state. The rendered frame is left as is.
func (a *FrameAnimator) Stop() {
	a.mu.Lock()
	a.ticks.Stop()
	a.session = nil
	if a.state == domain.AnimatorStopped {
		a.mu.Unlock()
		return
	}
	from := a.transition(domain.AnimatorStopped)
	a.mu.Unlock()

	a.bus.Publish(domain.NewAnimatorStateChangedEvent(from, domain.AnimatorStopped, nil))
}

// ShowOverview draws the whole buffer as a static waveform together with
// the spectrum of its first transform window. Only valid while stopped.
func (a *FrameAnimator) ShowOverview(buf *domain.AudioBuffer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != domain.AnimatorStopped {
		return fmt.Errorf("overview while %s: %w", a.state, domain.ErrInvalidTransition)
	}
	if buf == nil {
		return domain.ErrNoSignal
	}

	session, err := a.newSession(buf)
	if err != nil {
		return err
	}
	win, err := session.extractor.Overview(session.samples, buf.SampleRate)
	if err != nil {
		return err
	}
	spec, err := session.spectrum.Compute(session.samples)
	if err != nil {
		return err
	}

	a.surface.SetOverview(float64(buf.Duration().Milliseconds()))
	a.surface.SetSpectrumLimits(a.cfg.MinHz, float64(buf.SampleRate)/2)
	a.surface.CaptureBackground()
	return a.surface.UpdateLines(win.Points, spec.Points)
}

func (a *FrameAnimator) newSession(buf *domain.AudioBuffer) (*animationSession, error) {
	spectrumCfg := dsp.SpectrumConfig{
		SampleRate:      buf.SampleRate,
		TransformSize:   a.cfg.TransformSize,
		SmoothingWindow: a.cfg.SmoothingWindow,
		PolyOrder:       dsp.DefaultPolyOrder,
		FloorDB:         a.cfg.FloorDB,
		Hann:            a.cfg.Hann,
	}
	spectrum, err := dsp.NewSpectrumComputer(spectrumCfg)
	if err != nil {
		return nil, err
	}
	return &animationSession{
		buffer:    buf,
		samples:   buf.Mono(),
		extractor: dsp.NewExtractor(a.cfg.WindowMs, a.cfg.Budget, a.cfg.Decimation),
		spectrum:  spectrum,
	}, nil
}

// renderFrame computes and draws the frame for the current cursor.
// Panics from the pipeline are turned into errors.
func (a *FrameAnimator) renderFrame(s *animationSession) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame panicked: %v", r)
		}
	}()

	cursor := a.clock.CurrentTime()
	win, err := s.extractor.Extract(s.samples, s.buffer.SampleRate, cursor)
	if err != nil {
		return fmt.Errorf("extract window at %.3fs: %w", cursor, err)
	}
	spec, err := s.spectrum.Compute(centred(win.Samples, a.cfg.TransformSize))
	if err != nil {
		return fmt.Errorf("compute spectrum at %.3fs: %w", cursor, err)
	}
	if err := a.surface.UpdateLines(win.Points, spec.Points); err != nil {
		return fmt.Errorf("update lines: %w", err)
	}
	return nil
}

// transition sets the new state and returns the previous one. Caller holds mu.
func (a *FrameAnimator) transition(to domain.AnimatorState) domain.AnimatorState {
	from := a.state
	a.state = to
	return from
}

// centred returns the n samples around the middle of samples, so the
// spectrum describes the audio at the cursor rather than the window's start.
func centred(samples []float64, n int) []float64 {
	if n <= 0 || len(samples) <= n {
		return samples
	}
	off := (len(samples) - n) / 2
	return samples[off : off+n]
}

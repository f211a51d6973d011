package service

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// PlaybackService plays the processed signal and keeps the frame animator
// in step with the engine.
//
// It reacts to bus events:
//   - AudioLoaded and AudioReversed stop playback; the new signal is shown as an overview.
//   - SpeedChanged restarts playback from zero when it was playing.
//   - PlaybackCompleted stops the session.
//   - AnimatorStateChanged carrying a frame error stops the engine, so the
//     next Play starts a fresh session.
//
// All operations are thread-safe via sync.Mutex. Events are published after
// the lock is released.
type PlaybackService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	engine   ports.PlaybackEngine
	animator *FrameAnimator
	audio    *AudioService
	bus      ports.EventBus
	dispatch func(fn func())

	// State
	loaded *domain.AudioBuffer
	volume float64
	subs   []domain.SubscriptionID

	mu sync.Mutex
}

// NewPlaybackService creates a playback service and subscribes it to the bus.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.PlaybackEngine,
	animator *FrameAnimator,
	audio *AudioService,
	bus ports.EventBus,
) *PlaybackService {
	s := &PlaybackService{
		logger:   logger,
		engine:   engine,
		animator: animator,
		audio:    audio,
		bus:      bus,
		volume:   0.8, // Default 80% volume
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventAudioLoaded, s.handleAudioLoaded),
		bus.Subscribe(domain.EventAudioReversed, s.handleAudioReversed),
		bus.Subscribe(domain.EventSpeedChanged, s.handleSpeedChanged),
		bus.Subscribe(domain.EventPlaybackCompleted, s.handleCompleted),
		bus.Subscribe(domain.EventAnimatorStateChanged, s.handleAnimatorStateChanged),
	}

	logger.Debug("playback service initialized")
	return s
}

// Play starts playback of the reversed signal, or resumes it when paused.
func (s *PlaybackService) Play() error {
	s.mu.Lock()
	event, err := s.playLocked()
	s.mu.Unlock()

	if event != nil {
		s.bus.Publish(event)
	}
	return err
}

func (s *PlaybackService) playLocked() (domain.Event, error) {
	buf := s.audio.Processed()
	if buf == nil {
		return nil, domain.ErrNoReversedSignal
	}

	switch s.engine.Status() {
	case domain.StatusPlaying:
		return nil, nil
	case domain.StatusPaused:
		if s.loaded == buf {
			if err := s.engine.Play(); err != nil {
				return nil, err
			}
			resume := s.animator.Resume
			if s.animator.State() == domain.AnimatorStopped {
				resume = func() error { return s.animator.Start(buf) }
			}
			if err := resume(); err != nil {
				return nil, err
			}
			s.logger.Debug("playback resumed")
			return domain.NewPlaybackStartedEvent(s.audio.Speed()), nil
		}
		// The signal changed while paused; start over.
		if err := s.engine.Stop(); err != nil {
			s.logger.Warn("failed to stop engine", slog.Any("error", err))
		}
	}

	if s.loaded != buf {
		if err := s.engine.Load(buf); err != nil {
			return domain.NewAudioErrorEvent("play", err), err
		}
		s.loaded = buf
		if err := s.engine.SetVolume(s.volume); err != nil {
			s.logger.Warn("failed to apply volume", slog.Any("error", err))
		}
	}

	if err := s.engine.Play(); err != nil {
		return domain.NewAudioErrorEvent("play", err), err
	}

	s.animator.Stop()
	if err := s.animator.Start(buf); err != nil {
		if stopErr := s.engine.Stop(); stopErr != nil {
			s.logger.Warn("failed to stop engine after animator error", slog.Any("error", stopErr))
		}
		return domain.NewAudioErrorEvent("play", err), err
	}

	s.logger.Info("playback started", slog.Float64("speed", s.audio.Speed()))
	return domain.NewPlaybackStartedEvent(s.audio.Speed()), nil
}

// Pause pauses playback. The last frame stays on screen.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()

	if s.engine.Status() != domain.StatusPlaying {
		s.mu.Unlock()
		return nil
	}
	if err := s.engine.Pause(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.animator.Pause(); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		s.mu.Unlock()
		return err
	}
	position := s.engine.CurrentTime()
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaybackPausedEvent(secondsToDuration(position)))
	return nil
}

// TogglePlayPause pauses while playing and plays otherwise.
func (s *PlaybackService) TogglePlayPause() error {
	if s.engine.IsPlaying() {
		return s.Pause()
	}
	return s.Play()
}

// Stop ends playback and redraws the static overview of the signal.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	err := s.stopLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaybackStoppedEvent())
	return err
}

// stopLocked stops the engine and animator. Caller must hold the lock.
func (s *PlaybackService) stopLocked() error {
	err := s.engine.Stop()
	s.animator.Stop()
	s.showOverviewLocked()
	return err
}

// showOverviewLocked draws the processed signal, or the original before reversal.
func (s *PlaybackService) showOverviewLocked() {
	buf := s.audio.Processed()
	if buf == nil {
		buf = s.audio.Original()
	}
	if buf == nil {
		return
	}
	if err := s.animator.ShowOverview(buf); err != nil {
		s.logger.Warn("failed to draw overview", slog.Any("error", err))
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (s *PlaybackService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.volume = volume
	err := s.engine.SetVolume(volume)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// Volume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Status returns the engine status.
func (s *PlaybackService) Status() domain.PlaybackStatus {
	return s.engine.Status()
}

// Position returns the playback cursor in seconds.
func (s *PlaybackService) Position() float64 {
	return s.engine.CurrentTime()
}

func (s *PlaybackService) handleAudioLoaded(e domain.Event) {
	s.mu.Lock()
	wasActive := s.engine.Status() != domain.StatusStopped
	if err := s.stopLocked(); err != nil {
		s.logger.Warn("failed to stop engine", slog.Any("error", err))
	}
	s.loaded = nil
	s.mu.Unlock()

	if wasActive {
		s.bus.Publish(domain.NewPlaybackStoppedEvent())
	}
}

func (s *PlaybackService) handleAudioReversed(e domain.Event) {
	s.handleAudioLoaded(e)
}

func (s *PlaybackService) handleSpeedChanged(e domain.Event) {
	evt, ok := e.(domain.SpeedChangedEvent)
	if !ok || evt.Buffer == nil {
		return
	}

	s.mu.Lock()
	status := s.engine.Status()
	if err := s.stopLocked(); err != nil {
		s.logger.Warn("failed to stop engine", slog.Any("error", err))
	}

	var (
		event domain.Event
		err   error
	)
	if status == domain.StatusPlaying {
		s.logger.Debug("speed changed while playing, restarting", slog.Float64("speed", evt.Speed))
		event, err = s.playLocked()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to restart playback", slog.Any("error", err))
	}
	if status != domain.StatusStopped && event == nil {
		s.bus.Publish(domain.NewPlaybackStoppedEvent())
	}
	if event != nil {
		s.bus.Publish(event)
	}
}

// SetDispatcher routes engine completion onto the display thread. The engine
// reports the end of a track from its own goroutine, and the overview drawn
// in response must not render there. A nil dispatch runs handlers directly.
func (s *PlaybackService) SetDispatcher(dispatch func(fn func())) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch = dispatch
}

func (s *PlaybackService) handleCompleted(domain.Event) {
	s.mu.Lock()
	dispatch := s.dispatch
	s.mu.Unlock()

	if dispatch == nil {
		s.completeSession()
		return
	}
	dispatch(s.completeSession)
}

func (s *PlaybackService) completeSession() {
	s.mu.Lock()
	s.animator.Stop()
	s.showOverviewLocked()
	s.mu.Unlock()

	s.logger.Debug("playback completed")
	s.bus.Publish(domain.NewPlaybackStoppedEvent())
}

// handleAnimatorStateChanged ends the session after a failed frame. The
// animator has already stopped itself; the engine is stopped here.
func (s *PlaybackService) handleAnimatorStateChanged(e domain.Event) {
	ev, ok := e.(domain.AnimatorStateChangedEvent)
	if !ok || ev.Err == nil {
		return
	}

	s.mu.Lock()
	err := s.stopLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to stop playback after frame error", slog.Any("error", err))
	}
	s.bus.Publish(domain.NewPlaybackStoppedEvent())
}

// Shutdown unsubscribes from the bus and stops playback.
func (s *PlaybackService) Shutdown() error {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.animator.Stop()
	return s.engine.Stop()
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

// TestPlayWithoutBuffer tests that Play fails when nothing is loaded.
func TestPlayWithoutBuffer(t *testing.T) {
	engine := NewEngine(nil)

	if err := engine.Play(); !errors.Is(err, domain.ErrNothingLoaded) {
		t.Errorf("Expected ErrNothingLoaded, got %v", err)
	}
}

// TestPlayPauseStop tests the basic status transitions.
func TestPlayPauseStop(t *testing.T) {
	engine := NewEngine(nil)
	if err := engine.Load(testutil.RampBuffer(44100, 44100)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := engine.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !engine.IsPlaying() {
		t.Error("Engine should be playing")
	}

	engine.SimulateProgress(250 * time.Millisecond)
	if got := engine.CurrentTime(); got != 0.25 {
		t.Errorf("Expected position 0.25s, got %v", got)
	}

	if err := engine.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if engine.Status() != domain.StatusPaused {
		t.Errorf("Expected paused, got %s", engine.Status())
	}

	// Progress is ignored while paused
	engine.SimulateProgress(time.Second)
	if got := engine.CurrentTime(); got != 0.25 {
		t.Errorf("Position moved while paused: %v", got)
	}

	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if engine.CurrentTime() != 0 {
		t.Error("Stop should rewind")
	}

	play, pause, stop := engine.Calls()
	if play != 1 || pause != 1 || stop != 1 {
		t.Errorf("Unexpected call counts: play=%d pause=%d stop=%d", play, pause, stop)
	}
}

// TestSimulateProgressPublishesCompletion tests end-of-track detection.
func TestSimulateProgressPublishesCompletion(t *testing.T) {
	bus := eventbus.NewSyncEventBus()
	defer bus.Close()

	completed := 0
	bus.Subscribe(domain.EventPlaybackCompleted, func(domain.Event) { completed++ })

	engine := NewEngine(bus)
	if err := engine.Load(testutil.RampBuffer(8000, 8000)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := engine.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	engine.SimulateProgress(2 * time.Second)

	if !engine.AtEnd() {
		t.Error("Engine should be at end")
	}
	if engine.IsPlaying() {
		t.Error("Engine should have stopped")
	}
	if completed != 1 {
		t.Errorf("Expected 1 completion event, got %d", completed)
	}
}

// TestSetVolumeValidation tests volume bounds.
func TestSetVolumeValidation(t *testing.T) {
	engine := NewEngine(nil)

	if err := engine.SetVolume(1.5); !errors.Is(err, domain.ErrInvalidVolume) {
		t.Errorf("Expected ErrInvalidVolume, got %v", err)
	}
	if err := engine.SetVolume(0.3); err != nil {
		t.Errorf("SetVolume failed: %v", err)
	}
	if engine.Volume() != 0.3 {
		t.Errorf("Expected volume 0.3, got %v", engine.Volume())
	}
}

// TestFailureKnobs tests the configured failures.
func TestFailureKnobs(t *testing.T) {
	engine := NewEngine(nil)
	engine.SetFailLoad(true)

	var engineErr *domain.AudioEngineError
	if err := engine.Load(testutil.RampBuffer(10, 10)); !errors.As(err, &engineErr) {
		t.Errorf("Expected AudioEngineError, got %v", err)
	}

	engine.SetFailLoad(false)
	engine.SetFailPlay(true)
	if err := engine.Load(testutil.RampBuffer(10, 10)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := engine.Play(); !errors.As(err, &engineErr) {
		t.Errorf("Expected AudioEngineError, got %v", err)
	}
}

// TestProcessorLoad tests registered and unknown files.
func TestProcessorLoad(t *testing.T) {
	p := NewProcessor()
	p.AddFile("/music/a.wav", testutil.RampBuffer(100, 8000))

	buf, err := p.Load("/music/a.wav")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if buf.Frames() != 100 {
		t.Errorf("Expected 100 frames, got %d", buf.Frames())
	}

	var decodeErr *domain.DecodeError
	if _, err := p.Load("/music/missing.mp3"); !errors.As(err, &decodeErr) {
		t.Errorf("Expected DecodeError, got %v", err)
	}
}

package service

import (
	"image"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/adapter/tick"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/ports"
	"github.com/tejashwikalptaru/revscope/internal/testutil"
)

// spySurface records calls instead of drawing.
type spySurface struct {
	mu        sync.Mutex
	captures  int
	updates   int
	overview  float64
	windowMs  float64
	maxHz     float64
	lastWave  []domain.Point
	lastSpec  []domain.Point
	panicNext bool
}

func (s *spySurface) CaptureBackground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures++
}

func (s *spySurface) UpdateLines(wave, spec []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicNext {
		s.panicNext = false
		panic("surface exploded")
	}
	s.updates++
	s.lastWave = wave
	s.lastSpec = spec
	return nil
}

func (s *spySurface) SetWaveLimits(windowMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windowMs = windowMs
}

func (s *spySurface) SetOverview(durationMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overview = durationMs
}

func (s *spySurface) SetSpectrumLimits(_, maxHz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxHz = maxHz
}

func (s *spySurface) Front() image.Image { return nil }

func (s *spySurface) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

var _ ports.RenderSurface = (*spySurface)(nil)

type animatorFixture struct {
	animator *FrameAnimator
	surface  *spySurface
	engine   *mock.Engine
	ticks    *tick.Manual
	bus      *eventbus.SyncEventBus
	changes  []domain.AnimatorStateChangedEvent
}

// Helper to create a test animator with a small transform size
func newTestAnimator(t *testing.T) *animatorFixture {
	t.Helper()
	f := &animatorFixture{
		surface: &spySurface{},
		ticks:   tick.NewManual(),
		bus:     eventbus.NewSyncEventBus(),
	}
	f.engine = mock.NewEngine(f.bus)

	cfg := DefaultAnimatorConfig()
	cfg.Budget = 500
	cfg.TransformSize = 1024
	cfg.SmoothingWindow = 11

	f.animator = NewFrameAnimator(logger.NewTestLogger(), cfg, f.surface, f.engine, f.ticks, f.bus)
	f.bus.Subscribe(domain.EventAnimatorStateChanged, func(e domain.Event) {
		f.changes = append(f.changes, e.(domain.AnimatorStateChangedEvent))
	})
	return f
}

// play loads buf into the mock engine and starts it.
func (f *animatorFixture) play(t *testing.T, buf *domain.AudioBuffer) {
	t.Helper()
	require.NoError(t, f.engine.Load(buf))
	require.NoError(t, f.engine.Play())
}

func TestFrameAnimator_StartRendersOnTick(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 3, 2, 0.5)
	f.play(t, buf)

	require.NoError(t, f.animator.Start(buf))
	assert.Equal(t, domain.AnimatorRunning, f.animator.State())
	assert.True(t, f.ticks.Running())
	assert.Equal(t, 1, f.surface.captures)
	assert.Equal(t, 2000.0, f.surface.windowMs)
	assert.Equal(t, 4000.0, f.surface.maxHz)

	f.engine.SetPosition(time.Second)
	require.True(t, f.ticks.Tick())

	assert.Equal(t, 1, f.surface.Updates())
	assert.Equal(t, uint64(1), f.animator.Frames())
	assert.LessOrEqual(t, len(f.surface.lastWave), 500)
	assert.Len(t, f.surface.lastSpec, 512)

	require.Len(t, f.changes, 1)
	assert.Equal(t, domain.AnimatorStopped, f.changes[0].From)
	assert.Equal(t, domain.AnimatorRunning, f.changes[0].To)
}

func TestFrameAnimator_PausedTickIsNoop(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 3, 1, 0.5)
	f.play(t, buf)

	require.NoError(t, f.animator.Start(buf))
	require.True(t, f.ticks.Tick())
	require.NoError(t, f.animator.Pause())

	assert.Equal(t, domain.AnimatorPaused, f.animator.State())
	assert.False(t, f.ticks.Running())
	assert.False(t, f.ticks.Tick(), "paused source should not deliver ticks")

	// A tick that was already queued when pausing must not draw.
	f.animator.OnTick()
	assert.Equal(t, 1, f.surface.Updates())

	require.NoError(t, f.animator.Resume())
	assert.Equal(t, domain.AnimatorRunning, f.animator.State())
	require.True(t, f.ticks.Tick())
	assert.Equal(t, 2, f.surface.Updates())
	assert.Equal(t, 2, f.ticks.Starts())
}

func TestFrameAnimator_MalformedSignalStops(t *testing.T) {
	f := newTestAnimator(t)
	samples := make([]float64, 8000)
	for i := range samples {
		samples[i] = math.NaN()
	}
	buf := domain.NewAudioBuffer([][]float64{samples}, 8000, 16, "/tmp/nan.wav", "wav")
	f.play(t, buf)

	require.NoError(t, f.animator.Start(buf))

	assert.NotPanics(t, func() { f.ticks.Tick() })
	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	assert.False(t, f.ticks.Running())
	assert.Equal(t, 0, f.surface.Updates())

	require.Len(t, f.changes, 2)
	last := f.changes[1]
	assert.Equal(t, domain.AnimatorStopped, last.To)
	assert.ErrorIs(t, last.Err, domain.ErrMalformedSignal)
}

func TestFrameAnimator_SurfacePanicIsRecovered(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(220, 8000, 1, 1, 0.5)
	f.play(t, buf)
	require.NoError(t, f.animator.Start(buf))

	f.surface.panicNext = true
	assert.NotPanics(t, func() { f.ticks.Tick() })

	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	require.Len(t, f.changes, 2)
	require.Error(t, f.changes[1].Err)
	assert.Contains(t, f.changes[1].Err.Error(), "surface exploded")
}

func TestFrameAnimator_StopsAtEndOfTrack(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 1, 1, 0.5)
	f.play(t, buf)
	require.NoError(t, f.animator.Start(buf))

	f.engine.SetPosition(500 * time.Millisecond)
	require.True(t, f.ticks.Tick())
	assert.Equal(t, domain.AnimatorRunning, f.animator.State())

	f.engine.SetPosition(buf.Duration())
	require.True(t, f.ticks.Tick())

	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	assert.Equal(t, 2, f.surface.Updates(), "the final frame is still drawn")
	assert.False(t, f.ticks.Running())
	require.Len(t, f.changes, 2)
	assert.NoError(t, f.changes[1].Err)
}

func TestFrameAnimator_InvalidTransitions(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 1, 1, 0.5)

	assert.ErrorIs(t, f.animator.Pause(), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.animator.Resume(), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.animator.Start(nil), domain.ErrNoSignal)

	require.NoError(t, f.animator.Start(buf))
	assert.ErrorIs(t, f.animator.Start(buf), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.animator.Resume(), domain.ErrInvalidTransition)

	require.NoError(t, f.animator.Pause())
	assert.ErrorIs(t, f.animator.Pause(), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.animator.ShowOverview(buf), domain.ErrInvalidTransition)
}

func TestFrameAnimator_StopIsIdempotent(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 1, 1, 0.5)
	require.NoError(t, f.animator.Start(buf))

	f.animator.Stop()
	f.animator.Stop()

	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	assert.False(t, f.ticks.Running())
	assert.Len(t, f.changes, 2, "second Stop should not publish")

	// A new session may follow.
	require.NoError(t, f.animator.Start(buf))
	assert.Equal(t, domain.AnimatorRunning, f.animator.State())
}

func TestFrameAnimator_InvalidTransformSize(t *testing.T) {
	f := newTestAnimator(t)
	f.animator.cfg.TransformSize = 1000

	err := f.animator.Start(testutil.SineBuffer(440, 8000, 1, 1, 0.5))

	var sizeErr *domain.InvalidTransformSizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 1000, sizeErr.Size)
	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	assert.False(t, f.ticks.Running())
}

func TestFrameAnimator_ShowOverview(t *testing.T) {
	f := newTestAnimator(t)
	buf := testutil.SineBuffer(440, 8000, 4, 1, 0.5)

	require.NoError(t, f.animator.ShowOverview(buf))

	assert.Equal(t, 4000.0, f.surface.overview)
	assert.Equal(t, 1, f.surface.captures)
	assert.Equal(t, 1, f.surface.Updates())
	assert.Len(t, f.surface.lastWave, 500)
	assert.Len(t, f.surface.lastSpec, 512)
	assert.Equal(t, domain.AnimatorStopped, f.animator.State())
	assert.Empty(t, f.changes)
}

func TestFrameAnimator_WithRealTicker(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	surface := &spySurface{}
	bus := eventbus.NewSyncEventBus()
	engine := mock.NewEngine(bus)
	ticker := tick.NewTicker(5*time.Millisecond, nil)

	cfg := DefaultAnimatorConfig()
	cfg.Budget = 200
	cfg.TransformSize = 512
	cfg.SmoothingWindow = 0
	a := NewFrameAnimator(logger.NewTestLogger(), cfg, surface, engine, ticker, bus)

	buf := testutil.SineBuffer(440, 8000, 2, 1, 0.5)
	require.NoError(t, engine.Load(buf))
	require.NoError(t, engine.Play())
	require.NoError(t, a.Start(buf))

	assert.Eventually(t, func() bool { return surface.Updates() >= 3 }, time.Second, 5*time.Millisecond)

	a.Stop()
	ticker.Wait()
	assert.Equal(t, domain.AnimatorStopped, a.State())
}

func TestFrameAnimator_SpectrumUsesWindowCentre(t *testing.T) {
	f := newTestAnimator(t)

	// Silence except for a 1 kHz burst of one transform length at 1.5 s.
	const rate = 8000
	samples := make([]float64, 3*rate)
	for i := 3*rate/2 - 512; i < 3*rate/2+512; i++ {
		samples[i] = 0.5 * math.Sin(2*math.Pi*1000*float64(i)/rate)
	}
	buf := domain.NewAudioBuffer([][]float64{samples}, rate, 16, "/tmp/burst.wav", "wav")
	f.play(t, buf)
	require.NoError(t, f.animator.Start(buf))

	f.engine.SetPosition(1500 * time.Millisecond)
	require.True(t, f.ticks.Tick())

	peak := domain.Point{}
	for _, p := range f.surface.lastSpec {
		if p.Y > peak.Y {
			peak = p
		}
	}
	assert.Greater(t, peak.Y, 0.3)
	assert.InDelta(t, 1000, peak.X, 50)
}

func TestCentred(t *testing.T) {
	samples := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []float64{2, 3, 4, 5}, centred(samples, 4))
	assert.Equal(t, []float64{2, 3, 4}, centred(samples, 3))
	assert.Equal(t, samples, centred(samples, 8))
	assert.Equal(t, samples, centred(samples, 16))
}

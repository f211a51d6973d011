package app

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/decode"
	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/adapter/tick"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/render"
	"github.com/tejashwikalptaru/revscope/internal/service"
	"github.com/tejashwikalptaru/revscope/internal/style"
)

// fixedClock is a playback clock parked at one cursor position.
type fixedClock float64

func (c fixedClock) CurrentTime() float64 { return float64(c) }
func (fixedClock) IsPlaying() bool        { return true }
func (fixedClock) AtEnd() bool            { return false }

// FrameRequest describes a single frame rendered without a window.
type FrameRequest struct {
	Path string

	// At is the cursor position in seconds, ignored for an overview
	At float64

	// Reverse renders the reversed signal instead of the source
	Reverse bool

	// Speed is the timebase factor applied after reversal
	Speed float64

	// Overview draws the whole signal instead of the window around At
	Overview bool

	Width, Height int
}

// Headless runs the analyzer pipeline without a display: decoding, signal
// info, WAV export and frame rendering to an image.
type Headless struct {
	logger    *slog.Logger
	config    Config
	processor *decode.Processor
}

// NewHeadless creates a headless pipeline for config.
func NewHeadless(config Config, logger *slog.Logger) (*Headless, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Headless{
		logger:    logger,
		config:    config,
		processor: decode.NewProcessor(logger.With(slog.String("component", "decoder"))),
	}, nil
}

// Info decodes path and returns its signal parameters.
func (h *Headless) Info(path string) (domain.AudioMetadata, error) {
	buf, err := h.processor.Load(path)
	if err != nil {
		return domain.AudioMetadata{}, err
	}
	return h.processor.Metadata(buf), nil
}

// Export decodes path, reverses it, applies speed and writes a WAV file.
// An empty out writes next to the source as reversed_<name>.wav.
func (h *Headless) Export(path, out string, speed float64) (string, error) {
	buf, err := h.signal(path, true, speed)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = decode.DefaultExportPath(filepath.Dir(path), path)
	}
	return h.processor.ExportWAV(buf, out)
}

// Render draws one frame of the scope for req.
func (h *Headless) Render(req FrameRequest) (image.Image, error) {
	if req.Width < MinWindowWidth/2 || req.Height < MinWindowHeight/2 {
		return nil, &domain.ValidationError{
			Field:   "size",
			Value:   fmt.Sprintf("%dx%d", req.Width, req.Height),
			Message: fmt.Sprintf("must be at least %dx%d", MinWindowWidth/2, MinWindowHeight/2),
		}
	}
	buf, err := h.signal(req.Path, req.Reverse, req.Speed)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewSyncEventBus()
	defer func() { _ = bus.Close() }()

	var frameErr error
	bus.Subscribe(domain.EventAnimatorStateChanged, func(e domain.Event) {
		if ev, ok := e.(domain.AnimatorStateChangedEvent); ok && ev.Err != nil {
			frameErr = ev.Err
		}
	})

	mode, ok := h.config.DecimationMode()
	if !ok {
		mode = dsp.DecimatePeak
	}
	surface := render.NewSurface(style.Default(), req.Width, req.Height, h.config.Spectrum.FloorDB)
	ticks := tick.NewManual()
	animator := service.NewFrameAnimator(h.logger, h.config.Animator(mode), surface, fixedClock(req.At), ticks, bus)

	if req.Overview {
		if err := animator.ShowOverview(buf); err != nil {
			return nil, err
		}
		return surface.Front(), nil
	}

	if err := animator.Start(buf); err != nil {
		return nil, err
	}
	defer animator.Stop()
	ticks.Tick()
	if frameErr != nil {
		return nil, frameErr
	}
	return surface.Front(), nil
}

// signal decodes path and optionally reverses and retimes it.
func (h *Headless) signal(path string, reverse bool, speed float64) (*domain.AudioBuffer, error) {
	buf, err := h.processor.Load(path)
	if err != nil {
		return nil, err
	}
	if !reverse {
		return buf, nil
	}
	buf = h.processor.Reverse(buf)
	if speed == 0 || speed == 1 {
		return buf, nil
	}
	return h.processor.ChangeSpeed(buf, speed)
}

// Package service provides the business logic of the revscope analyzer.
package service

import (
	"log/slog"
	"math"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// AudioService owns the signal chain: the decoded original, its reversal and
// the speed-adjusted buffer that is played and exported.
// All operations are thread-safe via sync.RWMutex; events are published
// after the lock is released.
type AudioService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	processor ports.AudioProcessor
	bus       ports.EventBus

	// State
	original  *domain.AudioBuffer
	metadata  domain.AudioMetadata
	reversed  *domain.AudioBuffer
	processed *domain.AudioBuffer
	speed     float64

	mu sync.RWMutex
}

// NewAudioService creates a new audio service at normal speed.
func NewAudioService(
	logger *slog.Logger,
	processor ports.AudioProcessor,
	bus ports.EventBus,
) *AudioService {
	logger.Debug("audio service initialized")
	return &AudioService{
		logger:    logger,
		processor: processor,
		bus:       bus,
		speed:     1.0,
	}
}

// LoadFile decodes path and makes it the current signal.
// Any previous reversal is discarded.
func (s *AudioService) LoadFile(path string) (*domain.AudioBuffer, error) {
	s.bus.Publish(domain.NewProcessingEvent("load"))

	buf, err := s.processor.Load(path)
	if err != nil {
		s.logger.Warn("failed to load audio", slog.String("path", path), slog.Any("error", err))
		s.bus.Publish(domain.NewAudioErrorEvent("load", err))
		return nil, err
	}
	meta := s.processor.Metadata(buf)

	s.mu.Lock()
	s.original = buf
	s.metadata = meta
	s.reversed = nil
	s.processed = nil
	s.mu.Unlock()

	s.logger.Info("audio loaded",
		slog.String("file", meta.FileName),
		slog.Int("sample_rate", buf.SampleRate),
		slog.Int("channels", buf.ChannelCount()),
		slog.Duration("duration", meta.Duration))

	s.bus.Publish(domain.NewAudioLoadedEvent(buf, meta))
	return buf, nil
}

// Reverse reverses the loaded signal and applies the current speed.
func (s *AudioService) Reverse() (*domain.AudioBuffer, error) {
	s.mu.RLock()
	original, speed := s.original, s.speed
	s.mu.RUnlock()

	if original == nil {
		return nil, domain.ErrNoSignal
	}

	s.bus.Publish(domain.NewProcessingEvent("reverse"))

	reversed := s.processor.Reverse(original)
	processed, err := s.processor.ChangeSpeed(reversed, speed)
	if err != nil {
		s.bus.Publish(domain.NewAudioErrorEvent("reverse", err))
		return nil, err
	}

	s.mu.Lock()
	// A file loaded in the meantime wins.
	if s.original != original {
		s.mu.Unlock()
		return nil, domain.NewServiceError("AudioService", "Reverse", "signal replaced during reversal", domain.ErrNoSignal)
	}
	s.reversed = reversed
	s.processed = processed
	s.mu.Unlock()

	s.logger.Debug("signal reversed", slog.Float64("speed", speed), slog.Int("frames", processed.Frames()))
	s.bus.Publish(domain.NewAudioReversedEvent(processed, speed))
	return processed, nil
}

// SetSpeed changes the timebase factor. When a reversed signal exists the
// processed buffer is derived again from it.
func (s *AudioService) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || speed < domain.MinSpeed || speed > domain.MaxSpeed {
		return &domain.ValidationError{
			Field:   "speed",
			Value:   speed,
			Message: "must be between 0.5 and 2.0",
			Err:     domain.ErrInvalidSpeed,
		}
	}

	s.mu.RLock()
	reversed, current := s.reversed, s.speed
	s.mu.RUnlock()

	if speed == current {
		return nil
	}

	var processed *domain.AudioBuffer
	if reversed != nil {
		var err error
		if processed, err = s.processor.ChangeSpeed(reversed, speed); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.speed = speed
	if reversed != nil && s.reversed == reversed {
		s.processed = processed
	}
	s.mu.Unlock()

	s.logger.Debug("speed changed", slog.Float64("speed", speed))
	s.bus.Publish(domain.NewSpeedChangedEvent(speed, processed))
	return nil
}

// Export writes the processed signal as WAV. An empty path selects a file
// in the temp directory. The written path is returned.
func (s *AudioService) Export(path string) (string, error) {
	s.mu.RLock()
	processed := s.processed
	s.mu.RUnlock()

	if processed == nil {
		return "", domain.ErrNoReversedSignal
	}

	s.bus.Publish(domain.NewProcessingEvent("export"))

	written, err := s.processor.ExportWAV(processed, path)
	if err != nil {
		s.logger.Warn("export failed", slog.String("path", path), slog.Any("error", err))
		s.bus.Publish(domain.NewAudioErrorEvent("export", err))
		return "", err
	}

	s.logger.Info("exported reversed audio", slog.String("path", written))
	s.bus.Publish(domain.NewAudioExportedEvent(written))
	return written, nil
}

// Original returns the decoded signal, nil when nothing is loaded.
func (s *AudioService) Original() *domain.AudioBuffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// Processed returns the reversed, speed-adjusted signal, nil before Reverse.
func (s *AudioService) Processed() *domain.AudioBuffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processed
}

// Metadata returns the metadata of the loaded file.
func (s *AudioService) Metadata() domain.AudioMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

// Speed returns the current speed factor.
func (s *AudioService) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

// SupportedFormats lists the file extensions LoadFile accepts.
func (s *AudioService) SupportedFormats() []string {
	return s.processor.SupportedFormats()
}

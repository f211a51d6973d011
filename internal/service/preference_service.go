package service

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/dsp"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

// PreferenceService manages user preferences and the recent files list.
//
// It persists changes observed on the bus: volume and speed changes, and
// every loaded file (recent list and last folder).
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	recent     ports.RecentFilesRepository
	bus        ports.EventBus

	// Cached preferences
	prefs domain.Preferences
	subs  []domain.SubscriptionID

	// Concurrency control
	mu sync.RWMutex
}

// NewPreferenceService creates a preference service, loads the saved
// preferences and subscribes to the bus.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	recent ports.RecentFilesRepository,
	bus ports.EventBus,
) *PreferenceService {
	s := &PreferenceService{
		logger:     logger,
		repository: repository,
		recent:     recent,
		bus:        bus,
		prefs:      defaultPreferences(),
	}

	if prefs, err := repository.Load(); err == nil {
		s.prefs = prefs
	} else {
		logger.Warn("failed to load preferences, using defaults", slog.Any("error", err))
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVolumeChanged, s.handleVolumeChanged),
		bus.Subscribe(domain.EventSpeedChanged, s.handleSpeedChanged),
		bus.Subscribe(domain.EventAudioLoaded, s.handleAudioLoaded),
	}

	logger.Debug("preference service initialized")
	return s
}

func defaultPreferences() domain.Preferences {
	return domain.Preferences{
		Volume:     0.8,
		Speed:      1.0,
		Decimation: dsp.DecimatePeak.String(),
	}
}

// Preferences returns a copy of all cached preferences.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Volume returns the saved volume preference (0.0 to 1.0).
func (s *PreferenceService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Volume
}

// SetVolume saves the volume preference (0.0 to 1.0).
func (s *PreferenceService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.prefs.Volume = volume
	s.mu.Unlock()

	return s.repository.SaveVolume(volume)
}

// Speed returns the saved speed factor.
func (s *PreferenceService) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Speed
}

// SetSpeed saves the speed factor (0.5 to 2.0).
func (s *PreferenceService) SetSpeed(speed float64) error {
	if speed < domain.MinSpeed || speed > domain.MaxSpeed {
		return &domain.ValidationError{
			Field:   "speed",
			Value:   speed,
			Message: "must be between 0.5 and 2.0",
			Err:     domain.ErrInvalidSpeed,
		}
	}

	s.mu.Lock()
	s.prefs.Speed = speed
	s.mu.Unlock()

	return s.repository.SaveSpeed(speed)
}

// LastFolder returns the directory of the last opened file.
func (s *PreferenceService) LastFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.LastFolder
}

// SetLastFolder saves the directory of the last opened file.
func (s *PreferenceService) SetLastFolder(folder string) error {
	s.mu.Lock()
	s.prefs.LastFolder = folder
	s.mu.Unlock()

	return s.repository.SaveLastFolder(folder)
}

// ExportFolder returns the export directory, empty for the temp directory.
func (s *PreferenceService) ExportFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.ExportFolder
}

// SetExportFolder saves the export directory.
func (s *PreferenceService) SetExportFolder(folder string) error {
	return s.update(func(p *domain.Preferences) { p.ExportFolder = folder })
}

// Decimation returns the saved waveform decimation mode.
func (s *PreferenceService) Decimation() dsp.DecimationMode {
	s.mu.RLock()
	name := s.prefs.Decimation
	s.mu.RUnlock()

	mode, err := dsp.ParseDecimationMode(name)
	if err != nil {
		return dsp.DecimatePeak
	}
	return mode
}

// SetDecimation saves the waveform decimation mode.
func (s *PreferenceService) SetDecimation(mode dsp.DecimationMode) error {
	return s.update(func(p *domain.Preferences) { p.Decimation = mode.String() })
}

// RecentFiles returns the recently opened files, most recent first.
func (s *PreferenceService) RecentFiles() []string {
	paths, err := s.recent.List()
	if err != nil {
		s.logger.Warn("failed to list recent files", slog.Any("error", err))
		return nil
	}
	return paths
}

// AddRecentFile records path as the most recent file and remembers its folder.
func (s *PreferenceService) AddRecentFile(path string) error {
	if err := s.recent.Add(path); err != nil {
		return err
	}
	return s.SetLastFolder(filepath.Dir(path))
}

// ClearRecentFiles empties the recent files list.
func (s *PreferenceService) ClearRecentFiles() error {
	return s.recent.Clear()
}

// ResetToDefaults resets all preferences to default values.
// The recent files list is kept.
func (s *PreferenceService) ResetToDefaults() error {
	return s.update(func(p *domain.Preferences) { *p = defaultPreferences() })
}

// update applies fn to the cached preferences and saves them all.
func (s *PreferenceService) update(fn func(p *domain.Preferences)) error {
	s.mu.Lock()
	fn(&s.prefs)
	prefs := s.prefs
	s.mu.Unlock()

	return s.repository.Save(prefs)
}

func (s *PreferenceService) handleVolumeChanged(e domain.Event) {
	evt, ok := e.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	if err := s.SetVolume(evt.Volume); err != nil {
		s.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

func (s *PreferenceService) handleSpeedChanged(e domain.Event) {
	evt, ok := e.(domain.SpeedChangedEvent)
	if !ok {
		return
	}
	if err := s.SetSpeed(evt.Speed); err != nil {
		s.logger.Warn("failed to save speed", slog.Any("error", err))
	}
}

func (s *PreferenceService) handleAudioLoaded(e domain.Event) {
	evt, ok := e.(domain.AudioLoadedEvent)
	if !ok || evt.Buffer == nil || evt.Buffer.SourcePath == "" {
		return
	}
	if err := s.AddRecentFile(evt.Buffer.SourcePath); err != nil {
		s.logger.Warn("failed to record recent file", slog.Any("error", err))
	}
}

// Shutdown unsubscribes from the bus.
func (s *PreferenceService) Shutdown() error {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	return nil
}

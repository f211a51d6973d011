// Package memory provides repository implementations backed by Fyne preferences.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

const (
	keyVolume       = "preferences.volume"
	keySpeed        = "preferences.speed"
	keyLastFolder   = "preferences.last_folder"
	keyExportFolder = "preferences.export_folder"
	keyDecimation   = "preferences.decimation"
)

// DefaultPreferences are returned for keys that were never saved.
func DefaultPreferences() domain.Preferences {
	return domain.Preferences{
		Volume:     0.8,
		Speed:      1.0,
		Decimation: "peak",
	}
}

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
// This provides a thin wrapper around Fyne's preferences system with proper error handling.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// Save persists all preferences.
func (r *PreferencesRepository) Save(p domain.Preferences) error {
	if p.Volume < 0 || p.Volume > 1 {
		return domain.NewRepositoryError("save", "preferences", "volume out of range", domain.ErrInvalidVolume)
	}
	if p.Speed < domain.MinSpeed || p.Speed > domain.MaxSpeed {
		return domain.NewRepositoryError("save", "preferences", "speed out of range", domain.ErrInvalidSpeed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, p.Volume)
	r.prefs.SetFloat(keySpeed, p.Speed)
	r.prefs.SetString(keyLastFolder, p.LastFolder)
	r.prefs.SetString(keyExportFolder, p.ExportFolder)
	r.prefs.SetString(keyDecimation, p.Decimation)
	return nil
}

// Load retrieves all preferences, falling back to DefaultPreferences.
func (r *PreferencesRepository) Load() (domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def := DefaultPreferences()
	return domain.Preferences{
		Volume:       r.prefs.FloatWithFallback(keyVolume, def.Volume),
		Speed:        r.prefs.FloatWithFallback(keySpeed, def.Speed),
		LastFolder:   r.prefs.String(keyLastFolder),
		ExportFolder: r.prefs.String(keyExportFolder),
		Decimation:   r.prefs.StringWithFallback(keyDecimation, def.Decimation),
	}, nil
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// SaveSpeed persists the speed factor.
func (r *PreferencesRepository) SaveSpeed(speed float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keySpeed, speed)
	return nil
}

// SaveLastFolder persists the directory of the last opened file.
func (r *PreferencesRepository) SaveLastFolder(folder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastFolder, folder)
	return nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{keyVolume, keySpeed, keyLastFolder, keyExportFolder, keyDecimation} {
		r.prefs.RemoveValue(key)
	}
	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)

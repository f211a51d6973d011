// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/revscope/internal/domain"
)

// PreferencesRepository handles the persistence of user preferences.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// Save persists user preferences.
	Save(prefs domain.Preferences) error

	// Load retrieves user preferences.
	// If no preferences are saved, returns defaults (not an error).
	Load() (domain.Preferences, error)

	// SaveVolume persists only the volume setting.
	SaveVolume(volume float64) error

	// SaveSpeed persists only the speed factor.
	SaveSpeed(speed float64) error

	// SaveLastFolder persists the directory of the last opened file.
	SaveLastFolder(folder string) error
}

// RecentFilesRepository keeps a most-recently-used list of opened files.
//
// Thread-safety: Implementations must be thread-safe.
type RecentFilesRepository interface {
	// Add moves path to the front of the list, trimming it to the capacity.
	Add(path string) error

	// List returns the recent files, most recent first.
	List() ([]string, error)

	// Clear removes all entries.
	Clear() error
}

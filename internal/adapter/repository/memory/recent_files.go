package memory

import (
	"encoding/json"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/ports"
)

const keyRecentFiles = "history.recent_files"

// DefaultRecentCapacity is the length of the Open Recent menu.
const DefaultRecentCapacity = 10

// RecentFilesRepository implements ports.RecentFilesRepository using Fyne preferences.
//
// Fyne preferences automatically use OS-specific app data directories:
// - macOS: ~/Library/Preferences/com.revscope.asa2000.plist
// - Linux: ~/.config/fyne/com.revscope.asa2000/
// - Windows: %APPDATA%\fyne\com.revscope.asa2000\
//
// Thread-safe: All operations protected by sync.RWMutex.
type RecentFilesRepository struct {
	prefs    fyne.Preferences
	capacity int
	mu       sync.RWMutex
}

// NewRecentFilesRepository creates a new recent files repository.
// A capacity below one selects DefaultRecentCapacity.
func NewRecentFilesRepository(prefs fyne.Preferences, capacity int) *RecentFilesRepository {
	if capacity < 1 {
		capacity = DefaultRecentCapacity
	}
	return &RecentFilesRepository{
		prefs:    prefs,
		capacity: capacity,
	}
}

// Add moves path to the front of the list.
func (r *RecentFilesRepository) Add(path string) error {
	if path == "" {
		return domain.NewRepositoryError("add", "recent", "empty path", domain.ErrFileNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := r.load()
	if err != nil {
		// A corrupt list is replaced rather than blocking new entries.
		paths = nil
	}

	if i := slices.Index(paths, path); i >= 0 {
		paths = slices.Delete(paths, i, i+1)
	}
	paths = slices.Insert(paths, 0, path)
	if len(paths) > r.capacity {
		paths = paths[:r.capacity]
	}

	data, err := json.Marshal(paths)
	if err != nil {
		return domain.NewRepositoryError("add", "recent", "failed to marshal paths", err)
	}
	r.prefs.SetString(keyRecentFiles, string(data))
	return nil
}

// List returns the recent files, most recent first.
func (r *RecentFilesRepository) List() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load()
}

// Clear removes all entries.
func (r *RecentFilesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyRecentFiles)
	return nil
}

// load reads the stored list. Caller must hold the lock.
func (r *RecentFilesRepository) load() ([]string, error) {
	data := r.prefs.String(keyRecentFiles)
	if data == "" {
		// Nothing saved yet
		return []string{}, nil
	}

	var paths []string
	if err := json.Unmarshal([]byte(data), &paths); err != nil {
		return nil, domain.NewRepositoryError("list", "recent", "failed to unmarshal paths", err)
	}
	return paths, nil
}

// Verify interface implementation
var _ ports.RecentFilesRepository = (*RecentFilesRepository)(nil)

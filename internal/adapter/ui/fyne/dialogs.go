package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// FileDialog is a helper for creating audio file open dialogs.
type FileDialog struct {
	window     fyne.Window
	callback   func(string)
	logger     *slog.Logger
	extensions []string
	startDir   string
}

// NewFileDialog creates a new file dialog. extensions are given without the
// leading dot; startDir may be empty.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger, extensions []string, startDir string) *FileDialog {
	return &FileDialog{
		window:     window,
		callback:   callback,
		logger:     logger,
		extensions: extensions,
		startDir:   startDir,
	}
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		// Get file path
		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)

	if len(d.extensions) > 0 {
		fd.SetFilter(storage.NewExtensionFileFilter(dotted(d.extensions)))
	}
	if location := listableDir(d.startDir); location != nil {
		fd.SetLocation(location)
	}
	fd.Show()
}

// FolderDialog is a helper for creating folder open dialogs.
type FolderDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
	startDir string
}

// NewFolderDialog creates a new folder dialog.
func NewFolderDialog(window fyne.Window, callback func(string), logger *slog.Logger, startDir string) *FolderDialog {
	return &FolderDialog{
		window:   window,
		callback: callback,
		logger:   logger,
		startDir: startDir,
	}
}

// Show displays the folder dialog.
func (d *FolderDialog) Show() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			return
		}
		if uri == nil {
			return // User cancelled
		}

		// Get folder path
		folderPath := uri.Path()
		if d.callback != nil {
			d.callback(folderPath)
		}
	}, d.window)

	if location := listableDir(d.startDir); location != nil {
		fd.SetLocation(location)
	}
	fd.Show()
}

// listableDir returns dir as a listable URI, or nil when it cannot be listed.
func listableDir(dir string) fyne.ListableURI {
	if dir == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}

func dotted(extensions []string) []string {
	out := make([]string, len(extensions))
	for i, ext := range extensions {
		out[i] = "." + ext
	}
	return out
}

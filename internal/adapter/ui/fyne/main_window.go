package fyne

import (
	"image/color"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	xlayout "fyne.io/x/fyne/layout"
	"github.com/tejashwikalptaru/revscope/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/style"
	"github.com/tejashwikalptaru/revscope/res"
)

// speedStep is the TIMEBASE CONTROL slider resolution.
const speedStep = 0.1

// parameterBox is one labelled SIGNAL PARAMETERS readout.
type parameterBox struct {
	value *widget.Label
	box   fyneapp.CanvasObject
}

func newParameterBox(st style.Style, name string) parameterBox {
	title := canvas.NewText(name, st.Palette.TraceDim)
	title.TextSize = st.FontSize - 2
	title.TextStyle = fyneapp.TextStyle{Monospace: true}

	value := widget.NewLabel(parameterPlaceholder)
	value.TextStyle = fyneapp.TextStyle{Monospace: true, Bold: true}
	value.Truncation = fyneapp.TextTruncateClip

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = st.Palette.Grid
	border.StrokeWidth = 1

	return parameterBox{
		value: value,
		box:   container.NewStack(border, container.NewPadded(container.NewVBox(title, value))),
	}
}

// MainWindow is the instrument window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	style  style.Style
	logger *slog.Logger

	// Display
	scope *widgets.Scope

	// UI components
	statusLED     *canvas.Circle
	statusText    *canvas.Text
	loadButton    *widget.Button
	fileLabel     *widget.Label
	reverseButton *widget.Button
	exportButton  *widget.Button
	playButton    *widget.Button
	pauseButton   *widget.Button
	stopButton    *widget.Button
	speedSlider   *widget.Slider
	speedLabel    *widget.Label

	fs, ch, bits, rate, duration, format parameterBox

	// Menu
	mainMenu   *fyneapp.MainMenu
	recentMenu *fyneapp.MenuItem

	// Lifecycle management
	closeOnce     sync.Once
	onBeforeClose func()

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates the instrument window around an existing scope widget.
func NewMainWindow(app fyneapp.App, st style.Style, scope *widgets.Scope, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:    app,
		style:  st,
		scope:  scope,
		logger: logger,
	}

	// Create a window
	w.window = app.NewWindow(st.Labels.WindowTitle)

	// Build UI
	w.buildUI()

	// Set window properties
	w.window.Resize(fyneapp.Size{
		Width:  st.Layout.WindowWidth,
		Height: st.Layout.WindowHeight,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	st := w.style
	pal := st.Palette

	// Header: model name and status LED
	w.statusLED = canvas.NewCircle(pal.Trace)
	led := container.NewGridWrap(fyneapp.NewSize(12, 12), w.statusLED)
	model := canvas.NewText(st.Labels.Model, pal.Trace)
	model.TextStyle = fyneapp.TextStyle{Monospace: true, Bold: true}
	model.TextSize = st.FontSize + 6
	title := canvas.NewText(st.Labels.WindowTitle, pal.TraceDim)
	title.TextStyle = fyneapp.TextStyle{Monospace: true}
	header := container.NewHBox(model, container.NewCenter(led), title)

	// FILE INPUT
	w.loadButton = widget.NewButtonWithIcon("LOAD", theme.FolderOpenIcon(), nil)
	w.fileLabel = widget.NewLabel(noFileLabel)
	w.fileLabel.Truncation = fyneapp.TextTruncateEllipsis

	// SIGNAL PROCESSOR
	w.reverseButton = widget.NewButtonWithIcon("REVERSE", theme.MediaReplayIcon(), nil)
	w.exportButton = widget.NewButtonWithIcon("EXPORT", theme.DocumentSaveIcon(), nil)

	// SIGNAL PARAMETERS
	w.fs = newParameterBox(st, "Fs")
	w.ch = newParameterBox(st, "CH")
	w.bits = newParameterBox(st, "BITS")
	w.rate = newParameterBox(st, "RATE")
	w.duration = newParameterBox(st, "TIME")
	w.format = newParameterBox(st, "FMT")
	params := xlayout.NewResponsiveLayout(
		xlayout.Responsive(w.fs.box, 1, 0.5),
		xlayout.Responsive(w.ch.box, 1, 0.5),
		xlayout.Responsive(w.bits.box, 1, 0.5),
		xlayout.Responsive(w.rate.box, 1, 0.5),
		xlayout.Responsive(w.duration.box, 1, 0.5),
		xlayout.Responsive(w.format.box, 1, 0.5),
	)

	// PLAYBACK CONTROL
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.pauseButton = widget.NewButtonWithIcon("", theme.MediaPauseIcon(), nil)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), nil)
	transport := container.NewGridWithColumns(3, w.playButton, w.pauseButton, w.stopButton)

	// TIMEBASE CONTROL
	w.speedSlider = widget.NewSlider(domain.MinSpeed, domain.MaxSpeed)
	w.speedSlider.Step = speedStep
	w.speedSlider.Value = 1.0
	w.speedLabel = widget.NewLabel(speedLabel(1.0))
	w.speedSlider.OnChanged = func(value float64) {
		w.speedLabel.SetText(speedLabel(roundSpeed(value)))
	}
	timebase := container.NewBorder(nil, nil, nil, w.speedLabel, w.speedSlider)

	panel := container.NewVBox(
		w.section("FILE INPUT"), w.loadButton, w.fileLabel,
		w.section("SIGNAL PROCESSOR"), w.reverseButton, w.exportButton,
		w.section("SIGNAL PARAMETERS"), params,
		w.section("PLAYBACK CONTROL"), transport,
		w.section("TIMEBASE CONTROL"), timebase,
	)
	panelWidth := canvas.NewRectangle(pal.Panel)
	panelWidth.SetMinSize(fyneapp.NewSize(st.Layout.PanelWidth, 0))
	sidebar := container.NewStack(panelWidth, container.NewVScroll(container.NewPadded(panel)))

	// Status bar
	w.statusText = canvas.NewText(StatusReady, pal.Trace)
	w.statusText.TextStyle = fyneapp.TextStyle{Monospace: true, Bold: true}
	statusBar := container.NewStack(canvas.NewRectangle(pal.Panel), container.NewPadded(w.statusText))

	// Main layout
	content := container.NewBorder(header, statusBar, sidebar, nil, w.scope)
	w.window.SetContent(container.NewPadded(content))

	// Menu
	w.mainMenu = fyneapp.NewMainMenu(w.createMenu()...)
	w.window.SetMainMenu(w.mainMenu)
}

// section returns a panel heading.
func (w *MainWindow) section(name string) fyneapp.CanvasObject {
	heading := canvas.NewText(name, w.style.Palette.TraceDim)
	heading.TextStyle = fyneapp.TextStyle{Monospace: true, Bold: true}
	heading.TextSize = w.style.FontSize - 1
	return container.NewVBox(widget.NewSeparator(), heading)
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	// Button handlers
	w.loadButton.OnTapped = w.handleOpenFile
	w.reverseButton.OnTapped = w.presenter.OnReverseClicked
	w.exportButton.OnTapped = w.presenter.OnExportClicked
	w.playButton.OnTapped = w.presenter.OnPlayClicked
	w.pauseButton.OnTapped = w.presenter.OnPauseClicked
	w.stopButton.OnTapped = w.presenter.OnStopClicked

	// Speed is applied once the drag ends; each change rebuilds the signal.
	w.speedSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnSpeedChanged(roundSpeed(value))
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open...", w.handleOpenFile)
	openFile.Shortcut = &desktop.CustomShortcut{KeyName: fyneapp.KeyO, Modifier: fyneapp.KeyModifierShortcutDefault}

	w.recentMenu = fyneapp.NewMenuItem("Open Recent", nil)
	w.recentMenu.ChildMenu = fyneapp.NewMenu("")

	exportFolder := fyneapp.NewMenuItem("Export Folder...", w.handleExportFolder)

	exitMenu := fyneapp.NewMenuItem("Exit", w.closeWindow)
	exitMenu.IsQuit = true

	fileMenu := fyneapp.NewMenu("File", openFile, w.recentMenu, separator, exportFolder, separator, exitMenu)

	reverse := fyneapp.NewMenuItem("Reverse", w.onPresenter(func(p *Presenter) { p.OnReverseClicked() }))
	reverse.Shortcut = &desktop.CustomShortcut{KeyName: fyneapp.KeyR, Modifier: fyneapp.KeyModifierShortcutDefault}
	export := fyneapp.NewMenuItem("Export WAV", w.onPresenter(func(p *Presenter) { p.OnExportClicked() }))
	export.Shortcut = &desktop.CustomShortcut{KeyName: fyneapp.KeyE, Modifier: fyneapp.KeyModifierShortcutDefault}
	playPause := fyneapp.NewMenuItem("Play/Pause", w.onPresenter(func(p *Presenter) { p.OnPlayPauseToggled() }))
	stop := fyneapp.NewMenuItem("Stop", w.onPresenter(func(p *Presenter) { p.OnStopClicked() }))

	signalMenu := fyneapp.NewMenu("Signal", reverse, export, fyneapp.NewMenuItemSeparator(), playPause, stop)

	helpMenu := fyneapp.NewMenu("Help", fyneapp.NewMenuItem("About", w.showAbout))

	return []*fyneapp.Menu{fileMenu, signalMenu, helpMenu}
}

// onPresenter adapts a presenter call to a menu action.
func (w *MainWindow) onPresenter(fn func(p *Presenter)) func() {
	return func() {
		if w.presenter != nil {
			fn(w.presenter)
		}
	}
}

// handleOpenFile handles the "Open" menu action and the LOAD button.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	d := NewFileDialog(w.window, w.presenter.OnFileOpened, w.logger,
		w.presenter.SupportedFormats(), w.presenter.LastFolder())
	d.Show()
}

// handleExportFolder handles the "Export Folder" menu action.
func (w *MainWindow) handleExportFolder() {
	if w.presenter == nil {
		return
	}

	d := NewFolderDialog(w.window, w.presenter.OnExportFolderSelected, w.logger, w.presenter.LastFolder())
	d.Show()
}

// showAbout shows the About dialog.
func (w *MainWindow) showAbout() {
	about := widget.NewRichTextFromMarkdown(res.AboutContent)
	about.Wrapping = fyneapp.TextWrapWord
	d := dialog.NewCustom(w.style.Labels.WindowTitle, "Close", about, w.window)
	d.Resize(fyneapp.NewSize(w.style.Layout.PanelWidth*1.5, w.style.Layout.PanelWidth*1.5))
	d.Show()
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyO,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.handleOpenFile()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyR,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnReverseClicked()
	})

	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyE,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.presenter.OnExportClicked()
	})

	c.SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace {
			w.presenter.OnPlayPauseToggled()
		}
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		w.window.Close()
	})
}

// SetOnBeforeClose registers fn to run before the window closes, from the
// close button or from File > Exit.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.onBeforeClose = fn
	w.window.SetCloseIntercept(w.closeWindow)
}

// closeWindow runs the before-close hook and closes the window.
func (w *MainWindow) closeWindow() {
	if w.onBeforeClose != nil {
		w.onBeforeClose()
	}
	w.Close()
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetStatus shows message on the status bar. Alerts are drawn in red and
// light the status LED red.
func (w *MainWindow) SetStatus(message string, alert bool) {
	col := w.style.Palette.Trace
	if alert {
		col = w.style.Palette.Alert
	}
	w.statusText.Text = message
	w.statusText.Color = col
	w.statusText.Refresh()
	w.statusLED.FillColor = col
	w.statusLED.Refresh()
}

// StatusText returns the current status bar message.
func (w *MainWindow) StatusText() string {
	return w.statusText.Text
}

// SetFileName updates the FILE INPUT label.
func (w *MainWindow) SetFileName(name string) {
	w.fileLabel.SetText(name)
}

// SetSignalParameters updates the SIGNAL PARAMETERS boxes.
func (w *MainWindow) SetSignalParameters(params SignalParameters) {
	w.fs.value.SetText(params.SampleRate)
	w.ch.value.SetText(params.Channels)
	w.bits.value.SetText(params.BitDepth)
	w.rate.value.SetText(params.Bitrate)
	w.duration.value.SetText(params.Duration)
	w.format.value.SetText(params.Format)
}

// SetPlayState highlights the PLAYBACK CONTROL button that matches the state.
func (w *MainWindow) SetPlayState(playing bool) {
	if playing {
		w.playButton.Importance = widget.HighImportance
	} else {
		w.playButton.Importance = widget.MediumImportance
	}
	w.playButton.Refresh()
}

// SetSpeed moves the TIMEBASE CONTROL slider without applying the value again.
func (w *MainWindow) SetSpeed(speed float64) {
	w.speedSlider.Value = speed
	w.speedSlider.Refresh()
	w.speedLabel.SetText(speedLabel(speed))
}

// SetBusy disables the signal processor buttons while a file is decoded or
// processed.
func (w *MainWindow) SetBusy(busy bool) {
	for _, b := range []*widget.Button{w.loadButton, w.reverseButton, w.exportButton} {
		if busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
}

// SetRecentFiles rebuilds the Open Recent submenu.
func (w *MainWindow) SetRecentFiles(paths []string) {
	items := make([]*fyneapp.MenuItem, 0, len(paths)+2)
	for _, path := range paths {
		item := fyneapp.NewMenuItem(filepath.Base(path), w.onPresenter(func(p *Presenter) {
			p.OnFileOpened(path)
		}))
		items = append(items, item)
	}
	if len(paths) > 0 {
		items = append(items, fyneapp.NewMenuItemSeparator(),
			fyneapp.NewMenuItem("Clear Recent", w.onPresenter(func(p *Presenter) { p.OnClearRecentClicked() })))
	}
	w.recentMenu.ChildMenu.Items = items
	w.recentMenu.Disabled = len(paths) == 0
	w.mainMenu.Refresh()
}

// RecentFileCount returns the number of entries in the Open Recent submenu.
func (w *MainWindow) RecentFileCount() int {
	n := 0
	for _, item := range w.recentMenu.ChildMenu.Items {
		if !item.IsSeparator && item.Label != "Clear Recent" {
			n++
		}
	}
	return n
}

// roundSpeed snaps a slider value to the 0.1 grid.
func roundSpeed(v float64) float64 {
	return math.Round(v*10) / 10
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)

// Package fyne provides Fyne UI adapter implementations.
// This package implements the ASA-2000 instrument panel using the Fyne toolkit.
package fyne

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/domain"
	"github.com/tejashwikalptaru/revscope/internal/service"
)

// Status messages shown on the instrument status bar.
const (
	StatusReady           = "SYSTEM READY"
	StatusLoading         = "LOADING SIGNAL..."
	StatusAcquired        = "SIGNAL ACQUIRED"
	StatusProcessing      = "PROCESSING..."
	StatusReversed        = "SIGNAL REVERSED"
	StatusPaused          = "PAUSED"
	StatusStopped         = "STOPPED"
	StatusNoSignal        = "ERROR: NO SIGNAL"
	StatusNoReversed      = "ERROR: NO REVERSED SIGNAL"
	statusPlayingFormat   = "PLAYING @ %.1fx"
	statusExportedFormat  = "EXPORTED: %s"
	statusDecodeFormat    = "DECODE ERROR: %s"
	statusErrorFormat     = "ERROR: %s"
	statusDisplayFormat   = "DISPLAY ERROR: %s"
	statusTimebaseFormat  = "TIMEBASE %.1fx"
	speedLabelFormat      = "%.1fx"
	parameterPlaceholder  = "---"
	noFileLabel           = "NO FILE LOADED"
)

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
// All methods are called on the UI thread.
type UIView interface {
	// Status bar
	SetStatus(message string, alert bool)

	// FILE INPUT and SIGNAL PARAMETERS sections
	SetFileName(name string)
	SetSignalParameters(params SignalParameters)

	// PLAYBACK CONTROL and TIMEBASE CONTROL sections
	SetPlayState(playing bool)
	SetSpeed(speed float64)
	SetBusy(busy bool)

	// File menu
	SetRecentFiles(paths []string)
}

// SignalParameters are the formatted SIGNAL PARAMETERS boxes.
type SignalParameters struct {
	SampleRate string // Fs
	Channels   string // CH
	BitDepth   string // BITS
	Bitrate    string // RATE
	Duration   string // TIME
	Format     string // FMT
}

// EmptySignalParameters is shown before a file is loaded.
func EmptySignalParameters() SignalParameters {
	return SignalParameters{
		SampleRate: parameterPlaceholder,
		Channels:   parameterPlaceholder,
		BitDepth:   parameterPlaceholder,
		Bitrate:    parameterPlaceholder,
		Duration:   parameterPlaceholder,
		Format:     parameterPlaceholder,
	}
}

// FormatSignalParameters formats metadata for the SIGNAL PARAMETERS boxes.
func FormatSignalParameters(meta domain.AudioMetadata) SignalParameters {
	params := SignalParameters{
		SampleRate: fmt.Sprintf("%d Hz", meta.SampleRate),
		Channels:   fmt.Sprintf("%d", meta.Channels),
		BitDepth:   fmt.Sprintf("%d", meta.BitDepth),
		Bitrate:    fmt.Sprintf("%.0f kbps", meta.BitrateKbps),
		Duration:   fmt.Sprintf("%.2f s", meta.Duration.Seconds()),
		Format:     meta.Format,
	}
	if meta.BitDepth == 0 {
		params.BitDepth = parameterPlaceholder
	}
	if params.Format == "" {
		params.Format = parameterPlaceholder
	}
	return params
}

// EventSubscriber is the part of the event bus the presenter needs.
type EventSubscriber interface {
	SubscribeVia(eventType domain.EventType, dispatch eventbus.Dispatcher, handler domain.EventHandler) domain.SubscriptionID
	Unsubscribe(id domain.SubscriptionID)
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus, delivered on the UI thread
// - Map domain events to status messages and panel updates
// - Translate UI commands to service method calls
//
// Thread-safety: command handlers may be called from any goroutine.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	audioService      *service.AudioService
	playbackService   *service.PlaybackService
	preferenceService *service.PreferenceService

	bus      EventSubscriber
	dispatch eventbus.Dispatcher
	subs     []domain.SubscriptionID

	// UI view
	view UIView

	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter. dispatch moves event deliveries onto
// the UI thread; the application passes fyne.Do.
func NewPresenter(
	logger *slog.Logger,
	audioService *service.AudioService,
	playbackService *service.PlaybackService,
	preferenceService *service.PreferenceService,
	bus EventSubscriber,
	dispatch eventbus.Dispatcher,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger:            logger,
		audioService:      audioService,
		playbackService:   playbackService,
		preferenceService: preferenceService,
		bus:               bus,
		dispatch:          dispatch,
		view:              view,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Signal chain events
		domain.EventProcessingBusy: p.onProcessing,
		domain.EventAudioLoaded:    p.onAudioLoaded,
		domain.EventAudioReversed:  p.onAudioReversed,
		domain.EventSpeedChanged:   p.onSpeedChanged,
		domain.EventAudioExported:  p.onAudioExported,
		domain.EventAudioError:     p.onAudioError,

		// Playback events
		domain.EventPlaybackStarted: p.onPlaybackStarted,
		domain.EventPlaybackPaused:  p.onPlaybackPaused,
		domain.EventPlaybackStopped: p.onPlaybackStopped,

		// Display events
		domain.EventAnimatorStateChanged: p.onAnimatorStateChanged,
	}

	for eventType, handler := range subscriptions {
		p.subs = append(p.subs, p.bus.SubscribeVia(eventType, p.dispatch, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	p.view.SetStatus(StatusReady, false)
	p.view.SetFileName(noFileLabel)
	p.view.SetSignalParameters(EmptySignalParameters())
	p.view.SetPlayState(false)
	p.view.SetSpeed(p.audioService.Speed())
	p.view.SetRecentFiles(p.preferenceService.RecentFiles())

	if meta := p.audioService.Metadata(); p.audioService.Original() != nil {
		p.view.SetFileName(meta.FileName)
		p.view.SetSignalParameters(FormatSignalParameters(meta))
	}
}

// Event handlers

func (p *Presenter) onProcessing(event domain.Event) {
	e, ok := event.(domain.ProcessingEvent)
	if !ok {
		return
	}

	p.view.SetBusy(true)
	if e.Op == "load" {
		p.view.SetStatus(StatusLoading, false)
		return
	}
	p.view.SetStatus(StatusProcessing, false)
}

func (p *Presenter) onAudioLoaded(event domain.Event) {
	e, ok := event.(domain.AudioLoadedEvent)
	if !ok {
		return
	}

	p.view.SetBusy(false)
	p.view.SetFileName(e.Metadata.FileName)
	p.view.SetSignalParameters(FormatSignalParameters(e.Metadata))
	p.view.SetPlayState(false)
	p.view.SetRecentFiles(p.preferenceService.RecentFiles())
	p.view.SetStatus(StatusAcquired, false)
}

func (p *Presenter) onAudioReversed(domain.Event) {
	p.view.SetBusy(false)
	p.view.SetPlayState(false)
	p.view.SetStatus(StatusReversed, false)
}

func (p *Presenter) onSpeedChanged(event domain.Event) {
	e, ok := event.(domain.SpeedChangedEvent)
	if !ok {
		return
	}

	p.view.SetSpeed(e.Speed)
	// A running playback restarts and reports PLAYING itself.
	if p.playbackService.Status() != domain.StatusPlaying {
		p.view.SetStatus(fmt.Sprintf(statusTimebaseFormat, e.Speed), false)
	}
}

func (p *Presenter) onAudioExported(event domain.Event) {
	e, ok := event.(domain.AudioExportedEvent)
	if !ok {
		return
	}

	p.view.SetBusy(false)
	p.view.SetStatus(fmt.Sprintf(statusExportedFormat, e.Path), false)
}

func (p *Presenter) onAudioError(event domain.Event) {
	e, ok := event.(domain.AudioErrorEvent)
	if !ok {
		return
	}

	p.view.SetBusy(false)
	p.view.SetStatus(errorStatus(e.Error), true)
}

func (p *Presenter) onPlaybackStarted(event domain.Event) {
	e, ok := event.(domain.PlaybackStartedEvent)
	if !ok {
		return
	}

	p.view.SetPlayState(true)
	p.view.SetStatus(fmt.Sprintf(statusPlayingFormat, e.Speed), false)
}

func (p *Presenter) onPlaybackPaused(domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetStatus(StatusPaused, false)
}

func (p *Presenter) onPlaybackStopped(domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetStatus(StatusStopped, false)
}

func (p *Presenter) onAnimatorStateChanged(event domain.Event) {
	e, ok := event.(domain.AnimatorStateChangedEvent)
	if !ok || e.Err == nil {
		return
	}

	p.view.SetStatus(fmt.Sprintf(statusDisplayFormat, strings.ToUpper(e.Err.Error())), true)
}

// errorStatus maps an error to its status bar message.
func errorStatus(err error) string {
	var decodeErr *domain.DecodeError
	switch {
	case errors.Is(err, domain.ErrNoSignal):
		return StatusNoSignal
	case errors.Is(err, domain.ErrNoReversedSignal):
		return StatusNoReversed
	case errors.As(err, &decodeErr):
		reason := decodeErr.Error()
		if decodeErr.Err != nil {
			reason = decodeErr.Err.Error()
		}
		return fmt.Sprintf(statusDecodeFormat, strings.ToUpper(reason))
	default:
		return fmt.Sprintf(statusErrorFormat, strings.ToUpper(err.Error()))
	}
}

// UI Command handlers (called by UI)

// OnFileOpened loads a file. Failures are reported through the bus.
func (p *Presenter) OnFileOpened(filePath string) {
	if _, err := p.audioService.LoadFile(filePath); err != nil {
		p.logger.Error("load failed", slog.String("path", filePath), slog.Any("error", err))
	}
}

// OnReverseClicked reverses the loaded signal.
func (p *Presenter) OnReverseClicked() {
	if _, err := p.audioService.Reverse(); err != nil {
		p.logger.Error("reverse failed", slog.Any("error", err))
		p.view.SetStatus(errorStatus(err), true)
	}
}

// OnExportClicked writes the reversed signal to the export folder, or the
// temp directory when none is set.
func (p *Presenter) OnExportClicked() {
	if _, err := p.audioService.Export(p.exportPath()); err != nil {
		p.logger.Error("export failed", slog.Any("error", err))
		p.view.SetStatus(errorStatus(err), true)
	}
}

func (p *Presenter) exportPath() string {
	folder := p.preferenceService.ExportFolder()
	if folder == "" {
		return ""
	}
	var source string
	if buf := p.audioService.Original(); buf != nil {
		source = buf.SourcePath
	}
	return filepath.Join(folder, domain.ExportFileName(source))
}

// OnExportFolderSelected remembers the export folder.
func (p *Presenter) OnExportFolderSelected(folder string) {
	if err := p.preferenceService.SetExportFolder(folder); err != nil {
		p.logger.Error("failed to save export folder", slog.Any("error", err))
	}
}

// OnPlayClicked starts or resumes playback of the reversed signal.
func (p *Presenter) OnPlayClicked() {
	p.report("play", p.playbackService.Play())
}

// OnPauseClicked pauses playback.
func (p *Presenter) OnPauseClicked() {
	p.report("pause", p.playbackService.Pause())
}

// OnPlayPauseToggled toggles between playing and paused.
func (p *Presenter) OnPlayPauseToggled() {
	p.report("play/pause", p.playbackService.TogglePlayPause())
}

// OnStopClicked stops playback.
func (p *Presenter) OnStopClicked() {
	p.report("stop", p.playbackService.Stop())
}

// OnSpeedChanged applies a new timebase factor from the slider.
func (p *Presenter) OnSpeedChanged(speed float64) {
	if err := p.audioService.SetSpeed(speed); err != nil {
		p.logger.Error("speed change failed", slog.Float64("speed", speed), slog.Any("error", err))
		p.view.SetStatus(errorStatus(err), true)
	}
}

// OnClearRecentClicked empties the recent files list.
func (p *Presenter) OnClearRecentClicked() {
	if err := p.preferenceService.ClearRecentFiles(); err != nil {
		p.logger.Error("failed to clear recent files", slog.Any("error", err))
	}
	p.view.SetRecentFiles(nil)
}

// LastFolder returns the folder the open dialog starts in.
func (p *Presenter) LastFolder() string {
	return p.preferenceService.LastFolder()
}

// SupportedFormats returns the extensions the open dialog offers.
func (p *Presenter) SupportedFormats() []string {
	return p.audioService.SupportedFormats()
}

func (p *Presenter) report(op string, err error) {
	if err == nil {
		return
	}
	p.logger.Error(op+" failed", slog.Any("error", err))
	p.view.SetStatus(errorStatus(err), true)
}

// Shutdown unsubscribes from the bus.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subs {
			p.bus.Unsubscribe(id)
		}
	})
}

// speedLabel formats a factor for the TIMEBASE CONTROL label.
func speedLabel(speed float64) string {
	return fmt.Sprintf(speedLabelFormat, speed)
}

// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/decode"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/revscope/internal/adapter/audio/oto"
	"github.com/tejashwikalptaru/revscope/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/revscope/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/revscope/internal/adapter/tick"
	fyneui "github.com/tejashwikalptaru/revscope/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/revscope/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/revscope/internal/logger"
	"github.com/tejashwikalptaru/revscope/internal/ports"
	"github.com/tejashwikalptaru/revscope/internal/render"
	"github.com/tejashwikalptaru/revscope/internal/service"
	"github.com/tejashwikalptaru/revscope/internal/style"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the CLI
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	config  Config

	// Infrastructure
	eventBus  *eventbus.SyncEventBus
	processor ports.AudioProcessor
	engine    ports.PlaybackEngine
	ticker    *tick.Ticker
	scope     *widgets.Scope

	// Repositories
	preferencesRepo ports.PreferencesRepository
	recentRepo      ports.RecentFilesRepository

	// Services
	animator          *service.FrameAnimator
	audioService      *service.AudioService
	playbackService   *service.PlaybackService
	preferenceService *service.PreferenceService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	app := &Application{config: config}

	// Step 1: Create logger
	app.logger = logger.NewLogger(config.Logger())
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create Fyne application and theme
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}
	st := style.Default()
	st.Layout.WindowWidth = float32(config.Window.Width)
	st.Layout.WindowHeight = float32(config.Window.Height)
	app.fyneApp.Settings().SetTheme(fyneui.NewTheme(st))

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 4: Create the decoder and the playback engine
	app.processor = decode.NewProcessor(app.logger.With(slog.String("component", "decoder")))
	if config.MockAudio {
		engine := mock.NewEngine(app.eventBus)
		engine.SetLogger(app.logger.With(slog.String("engine", "mock")))
		app.engine = engine
	} else {
		engine, err := oto.NewEngine(app.logger.With(slog.String("engine", "oto")), app.eventBus)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audio engine: %w", err)
		}
		app.engine = engine
	}

	// Step 5: Create repositories
	prefs := app.fyneApp.Preferences()
	app.preferencesRepo = memory.NewPreferencesRepository(prefs)
	app.recentRepo = memory.NewRecentFilesRepository(prefs, config.RecentFiles)

	// Step 6: Create services (with dependency injection)
	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
		app.recentRepo,
		app.eventBus,
	)

	mode, fromConfig := config.DecimationMode()
	if fromConfig {
		if err := app.preferenceService.SetDecimation(mode); err != nil {
			app.logger.Warn("failed to save decimation mode", slog.Any("error", err))
		}
	} else {
		mode = app.preferenceService.Decimation()
	}

	surface := render.NewSurface(st, config.Window.Width, config.Window.Height, config.Spectrum.FloorDB)
	app.scope = widgets.NewScope(surface, fyne.NewSize(MinWindowWidth/2, MinWindowHeight/2))
	app.ticker = tick.NewTicker(config.Display.TickInterval, fyne.Do)

	app.animator = service.NewFrameAnimator(
		app.logger.With(slog.String("service", "animator")),
		config.Animator(mode),
		app.scope,
		app.engine,
		app.ticker,
		app.eventBus,
	)

	app.audioService = service.NewAudioService(
		app.logger.With(slog.String("service", "audio")),
		app.processor,
		app.eventBus,
	)

	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.engine,
		app.animator,
		app.audioService,
		app.eventBus,
	)
	app.playbackService.SetDispatcher(fyne.Do)

	// Step 7: Load saved state
	app.loadSavedState()

	// Step 8: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, st, app.scope, app.logger.With(slog.String("component", "window")))

	// Step 9: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.audioService,
		app.playbackService,
		app.preferenceService,
		app.eventBus,
		fyne.Do,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	// Stop playback and ticks before the window goes away
	app.mainWindow.SetOnBeforeClose(func() {
		if err := app.playbackService.Stop(); err != nil {
			app.logger.Warn("failed to stop playback on close", slog.Any("error", err))
		}
	})

	// Empty axes until a file is loaded
	app.scope.Clear()

	return app, nil
}

// loadSavedState restores volume and speed from the previous session.
func (a *Application) loadSavedState() {
	if err := a.playbackService.SetVolume(a.preferenceService.Volume()); err != nil {
		a.logger.Warn("failed to restore volume", slog.Any("error", err))
	}
	if err := a.audioService.SetSpeed(a.preferenceService.Speed()); err != nil {
		a.logger.Warn("failed to restore speed", slog.Any("error", err))
	}
}

// Run starts the application. A non-empty path is loaded before the window
// is shown. Run blocks until the window is closed.
func (a *Application) Run(path string) {
	a.logger.Info("ASA-2000 analyzer started")

	if path != "" {
		a.presenter.OnFileOpened(path)
	}

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	var err error
	a.shutdownOnce.Do(func() {
		err = a.shutdown()
	})
	return err
}

func (a *Application) shutdown() error {
	a.logger.Info("shutting down application")

	// Shutdown UI and presenter
	if a.presenter != nil {
		a.presenter.Shutdown()
	}

	// Shutdown services (in reverse order of creation)
	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	if a.preferenceService != nil {
		if err := a.preferenceService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown preference service", slog.Any("error", err))
		}
	}

	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker.Wait()
	}

	// Shutdown audio engine
	if a.engine != nil {
		if err := a.engine.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown audio engine", slog.Any("error", err))
		}
	}

	err := a.eventBus.Close()
	a.logger.Info("application shutdown complete")
	return err
}

// Services returns the application services (for testing).
func (a *Application) Services() (*service.AudioService, *service.PlaybackService, *service.PreferenceService) {
	return a.audioService, a.playbackService, a.preferenceService
}

// Animator returns the frame animator (for testing).
func (a *Application) Animator() *service.FrameAnimator {
	return a.animator
}

// EventBus returns the event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// FyneApp returns the Fyne application.
func (a *Application) FyneApp() fyne.App {
	return a.fyneApp
}

// Config returns the configuration the application was built with.
func (a *Application) Config() Config {
	return a.config
}

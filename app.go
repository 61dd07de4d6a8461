// app.go - application core
// Wires every component together and manages the application lifecycle.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jutukuva/overlay-captions/config"
	"github.com/jutukuva/overlay-captions/internal/events"
	"github.com/jutukuva/overlay-captions/internal/hotkey"
	"github.com/jutukuva/overlay-captions/internal/logging"
	"github.com/jutukuva/overlay-captions/internal/overlay"
	"github.com/jutukuva/overlay-captions/internal/settings"
	"github.com/jutukuva/overlay-captions/internal/transcript"
	"github.com/jutukuva/overlay-captions/internal/utils"
	"github.com/jutukuva/overlay-captions/internal/window"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// App is the bound application service. It owns every long-lived component
// and exposes the command surface to the frontend.
type App struct {
	wails *application.App

	// Core components
	config          *config.Config
	logger          *slog.Logger
	settingsStore   *settings.Store
	settingsService *settings.Service
	settingsWatcher *settings.Watcher
	windowManager   *window.WailsManager
	overlayCtl      *overlay.Controller
	emitter         events.Emitter

	// Caption history (SQLite)
	transcriptDB      *sql.DB
	transcriptStore   transcript.Store
	transcriptService *transcript.Service

	hotkeyManager *hotkey.Manager

	// Application state
	startTime  time.Time
	configPath string

	// Concurrency control
	mu        sync.RWMutex
	isRunning bool
	quitting  int32

	// Log plumbing for the frontend log viewer
	logHandler *logging.BroadcastHandler
	logEmitter *logging.EventEmitter
}

// NewApp creates a new application instance.
func NewApp() *App {
	return &App{
		startTime: time.Now(),
	}
}

// initialize loads configuration and sets up logging. Runs before the Wails
// application is constructed because window construction needs the config.
func (a *App) initialize() {
	// 1. Load configuration
	a.loadConfig()

	// 2. Set up logging
	a.setupLogging()

	a.logger.Info("🚀 Jutukuva overlay captions starting...",
		"version", Version,
		"config_file", a.configPath)
}

// startup finishes wiring once the Wails application and the main window
// exist.
func (a *App) startup(wailsApp *application.App, mainWindow *application.WebviewWindow) {
	a.wails = wailsApp

	// 3. Event bridge to the frontend
	a.emitter = events.NewWailsEmitter(wailsApp)
	a.logEmitter.Start(a.emitter)

	// 4. Window registry
	a.windowManager = window.NewWailsManager(wailsApp)
	a.windowManager.Adopt(window.LabelMain, mainWindow)

	// 5. Settings store and in-memory snapshot
	a.setupSettings()

	// 6. Overlay controller
	a.overlayCtl = overlay.NewController(a.windowManager, a.settingsService, a.emitter, a.logger)

	// 7. Caption transcript
	a.setupTranscript()

	// 8. Settings file watcher
	a.setupSettingsWatcher()

	// 9. Global hotkey
	a.setupHotkey()

	a.mu.Lock()
	a.isRunning = true
	a.mu.Unlock()

	a.logger.Info("✅ Jutukuva overlay captions started")
}

// loadConfig loads the embedded configuration, or the file given with
// -config.
func (a *App) loadConfig() {
	tempLogger := slog.Default()

	if err := utils.EnsureAppDirs(); err != nil {
		tempLogger.Warn(fmt.Sprintf("⚠️ Failed to create application directories: %v", err))
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadConfig(a.configPath)
	} else {
		cfg, err = config.LoadConfigFromBytes(defaultConfigContent)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	// Empty paths resolve under the per-user application directories.
	if cfg.Logging.FileEnabled && cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(utils.GetLogDir(), "app.log")
	}
	if cfg.Transcript.Enabled && cfg.Transcript.DatabasePath == "" {
		cfg.Transcript.DatabasePath = filepath.Join(utils.GetDataDir(), "captions.db")
	}

	a.config = cfg
}

// setupLogging installs the root logger.
func (a *App) setupLogging() {
	logger, broadcastHandler := setupLogger(a.config.Logging)
	a.logger = logger
	slog.SetDefault(logger)

	a.logHandler = broadcastHandler
	a.logEmitter = broadcastHandler.Emitter

	a.logger.Info("✅ Logging initialized",
		"level", a.config.Logging.Level,
		"file_enabled", a.config.Logging.FileEnabled)
}

// setupSettings loads the persisted user settings.
func (a *App) setupSettings() {
	a.settingsStore = settings.NewStore(utils.SettingsPath(), a.logger)
	a.settingsService = settings.NewService(a.settingsStore, a.logger)

	a.logger.Info("✅ Settings loaded", "path", a.settingsStore.Path())
}

// setupTranscript opens the caption history database.
func (a *App) setupTranscript() {
	if !a.config.Transcript.Enabled {
		a.logger.Info("Caption transcript disabled")
		return
	}

	db, err := transcript.OpenDB(a.config.Transcript.DatabasePath)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("⚠️ Failed to open caption database: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := transcript.EnsureSchema(ctx, db); err != nil {
		a.logger.Warn(fmt.Sprintf("⚠️ Failed to prepare caption schema: %v", err))
		db.Close()
		return
	}

	a.transcriptDB = db
	a.transcriptStore = transcript.NewSQLiteCaptionStore(db)
	a.transcriptService = transcript.NewService(
		a.transcriptStore,
		a.config.Transcript.Retention(),
		a.config.Transcript.CleanupInterval,
		a.logger,
	)
	a.transcriptService.Start()

	a.logger.Info("✅ Caption transcript ready", "db", a.config.Transcript.DatabasePath)
}

// setupSettingsWatcher mirrors external edits of settings.json into the
// running application.
func (a *App) setupSettingsWatcher() {
	watcher, err := settings.NewWatcher(a.settingsStore, a.logger)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("⚠️ Failed to watch settings file: %v", err))
		return
	}

	watcher.AddReloadCallback(func(loaded settings.AppSettings) {
		a.settingsService.ApplyLoaded(loaded)
		a.emitter.Emit(events.SettingsChanged, loaded)
		a.logger.Info("🔄 Settings reloaded from disk")
	})

	a.settingsWatcher = watcher
}

// setupHotkey registers the global overlay toggle shortcut.
func (a *App) setupHotkey() {
	if !a.config.Hotkey.Enabled {
		return
	}

	// Delivery only: the frontend decides what toggling means in its
	// current state.
	a.hotkeyManager = hotkey.New(func() {
		a.emitter.Emit(events.ToggleOverlay, nil)
	}, a.logger)
	a.hotkeyManager.Start()
}

// handleMainClosing runs when the user closes the main window: the overlay
// follows it down and the application exits.
func (a *App) handleMainClosing() {
	if a.overlayCtl != nil {
		a.overlayCtl.HandleMainClosing()
	}
	go a.quit()
}

// showMainFromTray brings the main window back, logging failures; tray
// callbacks have no caller to report to.
func (a *App) showMainFromTray() {
	if a.overlayCtl == nil {
		return
	}
	if err := a.overlayCtl.ShowMain(); err != nil {
		a.logger.Warn(fmt.Sprintf("Failed to show main window from tray: %v", err))
	}
}

// showOverlayFromTray switches to overlay-only mode.
func (a *App) showOverlayFromTray() {
	if a.overlayCtl == nil {
		return
	}
	a.overlayCtl.ShowFromTray()
}

// quit runs shutdown exactly once and then terminates the application.
func (a *App) quit() {
	if !atomic.CompareAndSwapInt32(&a.quitting, 0, 1) {
		return
	}
	a.shutdown()
	if a.wails != nil {
		a.wails.Quit()
	}
}

// shutdown tears components down in dependency order.
func (a *App) shutdown() {
	a.mu.Lock()
	logger := a.logger
	hotkeyManager := a.hotkeyManager
	overlayCtl := a.overlayCtl
	settingsWatcher := a.settingsWatcher
	transcriptService := a.transcriptService
	transcriptDB := a.transcriptDB
	logEmitter := a.logEmitter
	a.isRunning = false
	a.mu.Unlock()

	if logger != nil {
		logger.Info("🛑 Shutting down...")
	}

	// 1. Release the global hotkey
	if hotkeyManager != nil {
		hotkeyManager.Stop()
	}

	// 2. Tear the overlay window down
	if overlayCtl != nil {
		overlayCtl.CloseForQuit()
	}

	// 3. Stop watching the settings file
	if settingsWatcher != nil {
		_ = settingsWatcher.Close()
	}

	// 4. Stop the transcript retention loop
	if transcriptService != nil {
		transcriptService.Close()
	}

	// 5. Close the caption database
	if transcriptDB != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := transcriptDB.Close(); err != nil {
				if logger != nil {
					logger.Error("Caption database close failed", "error", err)
				}
			}
		}()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			if logger != nil {
				logger.Warn("Caption database close timed out, continuing shutdown")
			}
		}
	}

	// 6. Stop streaming logs to the frontend
	if logEmitter != nil {
		logEmitter.Stop()
	}

	a.mu.Lock()
	a.transcriptService = nil
	a.transcriptDB = nil
	a.mu.Unlock()

	if logger != nil {
		logger.Info("✅ Shutdown complete")
	}
}

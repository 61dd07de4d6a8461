// main.go - Jutukuva overlay captions entry point
// Builds the Wails application, the main window and the tray, then hands
// lifecycle control to App.

package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/jutukuva/overlay-captions/config"
	"github.com/jutukuva/overlay-captions/internal/logging"
	"github.com/jutukuva/overlay-captions/internal/tray"
	"github.com/jutukuva/overlay-captions/internal/window"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
)

// Version information, overridable at build time.
var (
	Version   = "2.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Command line flags.
var (
	configPath  = flag.String("config", "", "configuration file path (empty uses the embedded configuration)")
	showVersion = flag.Bool("version", false, "print version information")
)

// Embedded frontend assets.
//
//go:embed all:frontend/dist
var assets embed.FS

// Embedded application icon, used for the tray.
//
//go:embed build/appicon.png
var icon []byte

// Embedded default configuration.
//
//go:embed config/config.yaml
var defaultConfigContent []byte

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Jutukuva Subtiitrid\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Built: %s\n", BuildTime)
		os.Exit(0)
	}

	app := NewApp()
	app.configPath = *configPath

	// Configuration and logging come up before any window exists.
	app.initialize()

	wailsApp := application.New(application.Options{
		Name:        "Jutukuva Subtiitrid",
		Description: "Reaalajas subtiitrite ülekate",
		Services: []application.Service{
			application.NewService(app),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			// The tray keeps the process alive with every window closed.
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:      window.LabelMain,
		Title:     "Jutukuva",
		Width:     app.config.Window.Width,
		Height:    app.config.Window.Height,
		MinWidth:  app.config.Window.MinWidth,
		MinHeight: app.config.Window.MinHeight,
		URL:       "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInset,
			InvisibleTitleBarHeight: 38,
		},
		BackgroundColour: application.NewRGB(26, 26, 46),
	})

	// Closing the main window tears the overlay down and quits; the overlay
	// never outlives the main window.
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		app.handleMainClosing()
	})

	app.startup(wailsApp, mainWindow)

	tray.Setup(wailsApp, tray.Options{
		Icon:          icon,
		Tooltip:       "Jutukuva Subtiitrid",
		OnShowMain:    app.showMainFromTray,
		OnShowOverlay: app.showOverlayFromTray,
		OnQuit:        app.quit,
	})

	if err := wailsApp.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ============================================================
// Logging
// ============================================================

// setupLogger builds the root structured logger.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, *logging.BroadcastHandler) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var fileRotator *logging.FileRotator
	if cfg.FileEnabled {
		maxSize, err := logging.ParseSize(cfg.MaxFileSize)
		if err != nil {
			fmt.Printf("Warning: cannot parse log file size %q, using 100MB: %v\n", cfg.MaxFileSize, err)
			maxSize = 100 * 1024 * 1024
		}

		fileRotator, err = logging.NewFileRotator(cfg.FilePath, maxSize, cfg.MaxFiles, cfg.CompressRotated)
		if err != nil {
			fmt.Printf("Warning: cannot create log file rotator: %v\n", err)
			fileRotator = nil
		}
	}

	simpleHandler := &SimpleHandler{
		level:       level,
		fileRotator: fileRotator,
	}

	// BroadcastHandler adds the in-memory history behind GetRecentLogs and
	// the log:batch stream to the frontend.
	broadcastHandler := logging.NewBroadcastHandler(simpleHandler, 1000)

	return slog.New(broadcastHandler), broadcastHandler
}

// SimpleHandler writes one-line log records to the console and, when
// configured, to the rotating log file.
type SimpleHandler struct {
	level       slog.Level
	fileRotator *logging.FileRotator
}

func (h *SimpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *SimpleHandler) Handle(_ context.Context, r slog.Record) error {
	message := r.Message

	var attrs []string
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})

	if len(attrs) > 0 {
		message = message + " " + strings.Join(attrs, " ")
	}

	if len(message) > 500 {
		message = message[:500] + "... (truncated)"
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	pid := os.Getpid()
	gid := getGoroutineID()
	level := "INFO"
	switch r.Level {
	case slog.LevelDebug:
		level = "DEBUG"
	case slog.LevelWarn:
		level = "WARN"
	case slog.LevelError:
		level = "ERROR"
	}

	formatted := fmt.Sprintf("[%s] [PID:%d] [GID:%d] [%s] %s", timestamp, pid, gid, level, message)

	if h.fileRotator != nil {
		h.fileRotator.Write([]byte(formatted + "\n"))
	}
	fmt.Println(formatted)

	return nil
}

func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SimpleHandler) WithGroup(name string) slog.Handler {
	return h
}

// Close flushes and closes the log file.
func (h *SimpleHandler) Close() error {
	if h.fileRotator != nil {
		h.fileRotator.Sync()
		return h.fileRotator.Close()
	}
	return nil
}

func getGoroutineID() int {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	idField := strings.Fields(string(buf))[1]
	id, err := strconv.Atoi(idField)
	if err != nil {
		return 0
	}
	return id
}

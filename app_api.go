// app_api.go - API methods exposed to the frontend (Wails bindings)
//
// The API surface is split by concern:
// - app_api.go            - overlay window control, system status, logs (this file)
// - app_api_settings.go   - persisted user settings
// - app_api_transcript.go - caption history (SQLite)
// - app_events.go         - caption broadcast and frontend notifications

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jutukuva/overlay-captions/internal/events"
	"github.com/jutukuva/overlay-captions/internal/logging"
	"github.com/jutukuva/overlay-captions/internal/overlay"
	"github.com/jutukuva/overlay-captions/internal/window"
)

// ============================================================
// Overlay window API
// ============================================================

// ShowOverlay makes the caption overlay visible, creating the window on
// first use.
func (a *App) ShowOverlay() error {
	ctl := a.controller()
	if ctl == nil {
		return errors.New("overlay controller not ready")
	}
	if err := ctl.Show(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to show overlay: %v", err))
		return err
	}
	return nil
}

// HideOverlay hides the caption overlay. Hiding an absent overlay succeeds.
func (a *App) HideOverlay() error {
	ctl := a.controller()
	if ctl == nil {
		return errors.New("overlay controller not ready")
	}
	if err := ctl.Hide(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to hide overlay: %v", err))
		return err
	}
	return nil
}

// CloseOverlay destroys the overlay window. The next ShowOverlay creates a
// fresh one from the current settings.
func (a *App) CloseOverlay() error {
	ctl := a.controller()
	if ctl == nil {
		return errors.New("overlay controller not ready")
	}
	if err := ctl.Close(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to close overlay: %v", err))
		return err
	}
	return nil
}

// ToggleOverlay flips the overlay between visible and hidden and returns the
// resulting visibility.
func (a *App) ToggleOverlay() (bool, error) {
	ctl := a.controller()
	if ctl == nil {
		return false, errors.New("overlay controller not ready")
	}
	visible, err := ctl.Toggle()
	if err != nil {
		a.logger.Error(fmt.Sprintf("Failed to toggle overlay: %v", err))
		return visible, err
	}
	return visible, nil
}

// GetOverlayVisible reports whether the overlay is currently visible.
func (a *App) GetOverlayVisible() bool {
	ctl := a.controller()
	if ctl == nil {
		return false
	}
	return ctl.Visible()
}

// SetOverlayPosition moves the overlay window. Applies only to a live
// window; with no overlay present it does nothing and succeeds, so the
// caller cannot distinguish "applied" from "no window".
func (a *App) SetOverlayPosition(x, y int) error {
	ctl := a.controller()
	if ctl == nil {
		return nil
	}
	return ctl.SetPosition(x, y)
}

// SetOverlaySize resizes the overlay window. Same live-window-only
// semantics as SetOverlayPosition.
func (a *App) SetOverlaySize(width, height int) error {
	ctl := a.controller()
	if ctl == nil {
		return nil
	}
	return ctl.SetSize(width, height)
}

// SetClickThrough updates whether pointer input passes through the overlay.
// Same live-window-only semantics as SetOverlayPosition.
func (a *App) SetClickThrough(enabled bool) error {
	ctl := a.controller()
	if ctl == nil {
		return nil
	}
	return ctl.SetClickThrough(enabled)
}

// ShowMainWithSettings brings the main window to the front and asks its
// frontend to open the settings panel. Unlike the tray's show-main this does
// not touch the overlay, so captions keep running while the user adjusts
// settings.
func (a *App) ShowMainWithSettings() error {
	a.mu.RLock()
	manager := a.windowManager
	a.mu.RUnlock()

	if manager == nil {
		return errors.New("window manager not ready")
	}
	mw, ok := manager.Get(window.LabelMain)
	if !ok {
		// Nothing to raise; the open-settings event would have no listener
		// anyway.
		return nil
	}
	if err := mw.Show(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to show main window: %v", err))
		return fmt.Errorf("show main window: %w", err)
	}
	if err := mw.Focus(); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to focus main window: %v", err))
		return fmt.Errorf("focus main window: %w", err)
	}
	a.emitter.Emit(events.OpenSettings, nil)
	return nil
}

// CloseApp closes the overlay and the main window and terminates the
// application with exit code 0.
func (a *App) CloseApp() {
	a.logger.Info("Close requested from frontend")
	go a.quit()
}

// controller returns the overlay controller, or nil before startup has run.
func (a *App) controller() *overlay.Controller {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.overlayCtl
}

// ============================================================
// System status API
// ============================================================

// SystemStatus is the state snapshot shown on the main window.
type SystemStatus struct {
	Version           string `json:"version"`
	Uptime            string `json:"uptime"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	StartTime         string `json:"start_time"`
	OverlayVisible    bool   `json:"overlay_visible"`
	TranscriptEnabled bool   `json:"transcript_enabled"`
	HotkeyEnabled     bool   `json:"hotkey_enabled"`
	SettingsPath      string `json:"settings_path"`
}

// GetSystemStatus returns the current system status.
func (a *App) GetSystemStatus() SystemStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	uptime := time.Since(a.startTime)

	status := SystemStatus{
		Version:       Version,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     a.startTime.Format(time.RFC3339),
	}

	if a.overlayCtl != nil {
		status.OverlayVisible = a.overlayCtl.Visible()
	}
	if a.config != nil {
		status.TranscriptEnabled = a.config.Transcript.Enabled && a.transcriptService != nil
		status.HotkeyEnabled = a.config.Hotkey.Enabled
	}
	if a.settingsStore != nil {
		status.SettingsPath = a.settingsStore.Path()
	}

	return status
}

// ============================================================
// Log viewer API
// ============================================================

// GetRecentLogs returns up to count recent log entries, oldest first.
func (a *App) GetRecentLogs(count int) []logging.LogEntry {
	a.mu.RLock()
	handler := a.logHandler
	a.mu.RUnlock()

	if handler == nil {
		return []logging.LogEntry{}
	}
	return handler.RecentEntries(count)
}

// ============================================================
// Helpers
// ============================================================

// formatDuration renders a duration as 1h2m3s / 2m3s / 3s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

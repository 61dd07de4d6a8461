// app_api_settings.go - persisted user settings API (Wails bindings)
// The settings record parametrizes the overlay window and the caption
// rendering; saving replaces the in-memory snapshot and the settings file.

package main

import (
	"errors"
	"fmt"

	"github.com/jutukuva/overlay-captions/internal/events"
	"github.com/jutukuva/overlay-captions/internal/settings"
)

// ============================================================
// Settings API
// ============================================================

// GetSettings returns the current settings snapshot.
func (a *App) GetSettings() settings.AppSettings {
	svc := a.settingsSvc()
	if svc == nil {
		return settings.Default()
	}
	return svc.Get()
}

// SaveSettings replaces the in-memory snapshot and persists it. The new
// record takes effect in memory even when persistence fails; the previous
// file contents survive a failed save. Geometry changes are not pushed to a
// live overlay window here, the frontend applies those through the
// SetOverlay* commands.
func (a *App) SaveSettings(newSettings settings.AppSettings) error {
	svc := a.settingsSvc()
	if svc == nil {
		return errors.New("settings service not ready")
	}

	if err := svc.Replace(newSettings); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to save settings: %v", err))
		return fmt.Errorf("save settings: %w", err)
	}

	a.logger.Info("✅ Settings saved")
	a.emitter.Emit(events.SettingsChanged, svc.Get())
	return nil
}

// ResetSettings restores the defaults, persists them and returns the new
// snapshot.
func (a *App) ResetSettings() (settings.AppSettings, error) {
	svc := a.settingsSvc()
	if svc == nil {
		return settings.Default(), errors.New("settings service not ready")
	}

	restored, err := svc.Reset()
	if err != nil {
		a.logger.Error(fmt.Sprintf("Failed to reset settings: %v", err))
		return restored, fmt.Errorf("reset settings: %w", err)
	}

	a.logger.Info("✅ Settings reset to defaults")
	a.emitter.Emit(events.SettingsChanged, restored)
	return restored, nil
}

// ============================================================
// Session code API
// ============================================================

// SetLastSessionCode persists the most recently joined session code. A nil
// code clears it.
func (a *App) SetLastSessionCode(code *string) error {
	svc := a.settingsSvc()
	if svc == nil {
		return errors.New("settings service not ready")
	}

	if err := svc.SetLastSessionCode(code); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to save session code: %v", err))
		return fmt.Errorf("save session code: %w", err)
	}
	return nil
}

// GetLastSessionCode returns the persisted session code, or nil when none
// has been stored.
func (a *App) GetLastSessionCode() *string {
	svc := a.settingsSvc()
	if svc == nil {
		return nil
	}
	return svc.LastSessionCode()
}

// settingsSvc returns the settings service, or nil before startup has run.
func (a *App) settingsSvc() *settings.Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settingsService
}

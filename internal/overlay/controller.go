// Package overlay owns the overlay window lifecycle and the visibility flag
// that the rest of the application reads.
package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jutukuva/overlay-captions/internal/events"
	"github.com/jutukuva/overlay-captions/internal/settings"
	"github.com/jutukuva/overlay-captions/internal/window"
)

// SettingsSource supplies the overlay settings used when the window is
// created.
type SettingsSource interface {
	Overlay() settings.OverlaySettings
}

// VisibilityEvent is the payload of the overlay:visibility event.
type VisibilityEvent struct {
	Visible bool `json:"visible"`
}

// Controller drives the overlay window through its lifecycle. The overlay is
// created lazily on first show and closed when the main window closes; in
// between it is only hidden and shown.
//
// All transitions are serialized on opMu so concurrent triggers (command,
// tray, hotkey) cannot interleave a create with a close. The visibility flag
// has its own lock so reads never wait on a native window call.
type Controller struct {
	windows window.Manager
	src     SettingsSource
	emitter events.Emitter
	logger  *slog.Logger

	opMu sync.Mutex

	mu      sync.RWMutex
	visible bool
}

// NewController wires the controller to the window manager and settings.
func NewController(windows window.Manager, src SettingsSource, emitter events.Emitter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		windows: windows,
		src:     src,
		emitter: emitter,
		logger:  logger,
	}
}

// Visible reports whether the overlay is currently considered visible.
func (c *Controller) Visible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible
}

func (c *Controller) setVisible(v bool) {
	c.mu.Lock()
	changed := c.visible != v
	c.visible = v
	c.mu.Unlock()

	if changed && c.emitter != nil {
		c.emitter.Emit(events.OverlayVisibility, VisibilityEvent{Visible: v})
	}
}

// Show makes the overlay visible, creating the window on first use.
func (c *Controller) Show() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.showLocked()
}

// Hide hides the overlay window. Hiding an absent overlay is a no-op that
// still clears the visibility flag.
func (c *Controller) Hide() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.hideLocked()
}

// Close destroys the overlay window if it exists.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.closeLocked()
}

// Toggle flips the overlay between visible and hidden and returns the new
// state. The whole flip runs under the transition lock, so two concurrent
// toggles land on opposite states instead of both showing or both hiding.
func (c *Controller) Toggle() (bool, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.Visible() {
		if err := c.hideLocked(); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := c.showLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// SetPosition moves the overlay window. No-op when the overlay is absent.
func (c *Controller) SetPosition(x, y int) error {
	w, ok := c.windows.Get(window.LabelOverlay)
	if !ok {
		return nil
	}
	if err := w.SetPosition(x, y); err != nil {
		return fmt.Errorf("move overlay window: %w", err)
	}
	return nil
}

// SetSize resizes the overlay window. No-op when the overlay is absent.
func (c *Controller) SetSize(width, height int) error {
	w, ok := c.windows.Get(window.LabelOverlay)
	if !ok {
		return nil
	}
	if err := w.SetSize(width, height); err != nil {
		return fmt.Errorf("resize overlay window: %w", err)
	}
	return nil
}

// SetClickThrough updates whether the overlay ignores mouse input. No-op when
// the overlay is absent.
func (c *Controller) SetClickThrough(enabled bool) error {
	w, ok := c.windows.Get(window.LabelOverlay)
	if !ok {
		return nil
	}
	if err := w.SetIgnoreMouseEvents(enabled); err != nil {
		return fmt.Errorf("set overlay click-through: %w", err)
	}
	return nil
}

// ShowMain brings the main window to the front, hiding the overlay first.
// Overlay hide failures are logged and do not block the main window.
func (c *Controller) ShowMain() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if w, ok := c.windows.Get(window.LabelOverlay); ok {
		if err := w.Hide(); err != nil {
			c.logger.Warn(fmt.Sprintf("Failed to hide overlay window: %v", err))
		}
	}
	c.setVisible(false)

	mw, ok := c.windows.Get(window.LabelMain)
	if !ok {
		return errors.New("main window not found")
	}
	if err := mw.Show(); err != nil {
		return fmt.Errorf("show main window: %w", err)
	}
	if err := mw.Focus(); err != nil {
		return fmt.Errorf("focus main window: %w", err)
	}
	return nil
}

// ShowFromTray switches from the main window to the overlay. The work runs on
// its own goroutine because tray callbacks arrive on the native menu thread.
func (c *Controller) ShowFromTray() {
	go c.showFromTray()
}

func (c *Controller) showFromTray() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if mw, ok := c.windows.Get(window.LabelMain); ok {
		if err := mw.Hide(); err != nil {
			c.logger.Warn(fmt.Sprintf("Failed to hide main window: %v", err))
		}
	}

	err := c.showLocked()
	if err == nil {
		return
	}
	c.logger.Error(fmt.Sprintf("Failed to show overlay from tray: %v", err))

	mw, ok := c.windows.Get(window.LabelMain)
	if !ok {
		return
	}
	if err := mw.Show(); err != nil {
		c.logger.Error(fmt.Sprintf("Failed to restore main window: %v", err))
		return
	}
	if err := mw.Focus(); err != nil {
		c.logger.Warn(fmt.Sprintf("Failed to focus main window: %v", err))
	}
}

// HandleMainClosing tears the overlay down alongside the closing main window.
func (c *Controller) HandleMainClosing() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.closeQuietly()
}

// HandleOverlayClosed records that the overlay window is gone. It runs from
// the window close hook, so it must not take the transition lock.
func (c *Controller) HandleOverlayClosed() {
	c.setVisible(false)
}

// CloseForQuit closes the overlay during application shutdown.
func (c *Controller) CloseForQuit() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.closeQuietly()
}

func (c *Controller) closeQuietly() {
	if w, ok := c.windows.Get(window.LabelOverlay); ok {
		if err := w.Close(); err != nil {
			c.logger.Warn(fmt.Sprintf("Failed to close overlay window: %v", err))
		}
	}
	c.setVisible(false)
}

// showLocked shows the existing overlay or creates one from the current
// settings. The visibility flag is only set after the native call succeeds.
func (c *Controller) showLocked() error {
	if w, ok := c.windows.Get(window.LabelOverlay); ok {
		if err := w.Show(); err != nil {
			return fmt.Errorf("show overlay window: %w", err)
		}
		c.setVisible(true)
		return nil
	}

	ov := c.src.Overlay()
	_, err := c.windows.CreateOverlay(window.OverlayOptions{
		X:            ov.Position.X,
		Y:            ov.Position.Y,
		Width:        ov.Size.Width,
		Height:       ov.Size.Height,
		AlwaysOnTop:  ov.AlwaysOnTop,
		ClickThrough: ov.ClickThrough,
		OnClosed:     c.HandleOverlayClosed,
	})
	if err != nil {
		return fmt.Errorf("create overlay window: %w", err)
	}
	c.setVisible(true)
	return nil
}

func (c *Controller) hideLocked() error {
	if w, ok := c.windows.Get(window.LabelOverlay); ok {
		if err := w.Hide(); err != nil {
			return fmt.Errorf("hide overlay window: %w", err)
		}
	}
	c.setVisible(false)
	return nil
}

func (c *Controller) closeLocked() error {
	if w, ok := c.windows.Get(window.LabelOverlay); ok {
		if err := w.Close(); err != nil {
			return fmt.Errorf("close overlay window: %w", err)
		}
	}
	c.setVisible(false)
	return nil
}

// Package window abstracts native webview windows behind small interfaces so
// the overlay lifecycle can be driven and tested without a running GUI.
package window

// Window labels. The shell manages exactly two logical windows.
const (
	LabelMain    = "main"
	LabelOverlay = "overlay"
)

// Window is a handle to one native window.
type Window interface {
	Show() error
	Hide() error
	Close() error
	Focus() error
	IsVisible() bool
	SetPosition(x, y int) error
	SetSize(width, height int) error
	SetAlwaysOnTop(onTop bool) error
	SetIgnoreMouseEvents(ignore bool) error
}

// OverlayOptions carries everything needed to construct the caption overlay
// window. Platform-specific flags (transparency, decoration, taskbar
// visibility) are not part of it; they come from the per-OS traits table.
type OverlayOptions struct {
	X            int
	Y            int
	Width        int
	Height       int
	AlwaysOnTop  bool
	ClickThrough bool

	// OnClosed runs after the native window has been closed, from any
	// origin (command, cascade, user action).
	OnClosed func()
}

// Manager creates and looks up windows by label.
type Manager interface {
	// Get returns the window with the given label, if it exists.
	Get(label string) (Window, bool)

	// CreateOverlay constructs the overlay window. Callers check for an
	// existing overlay first; creating over an existing one is an error.
	CreateOverlay(opts OverlayOptions) (Window, error)
}

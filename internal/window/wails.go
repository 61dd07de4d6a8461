package window

import (
	"runtime"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
)

// WailsManager implements Manager on top of the Wails application. It keeps
// its own label registry: Wails owns the native windows, the registry mirrors
// which labels currently have a live one.
type WailsManager struct {
	app *application.App

	mu      sync.RWMutex
	windows map[string]*application.WebviewWindow
}

// NewWailsManager creates an empty manager bound to the application.
func NewWailsManager(app *application.App) *WailsManager {
	return &WailsManager{
		app:     app,
		windows: make(map[string]*application.WebviewWindow),
	}
}

// Adopt registers a window created outside the manager. The main window is
// built in main() before the manager exists.
func (m *WailsManager) Adopt(label string, w *application.WebviewWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[label] = w
}

// Get returns the live window with the given label.
func (m *WailsManager) Get(label string) (Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.windows[label]
	if !ok {
		return nil, false
	}
	return &wailsWindow{w: w}, true
}

func (m *WailsManager) forget(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, label)
}

// CreateOverlay constructs the native overlay window using the per-OS traits
// row. The window is created hidden, adjusted, then shown, so it never
// flashes at a default position.
func (m *WailsManager) CreateOverlay(opts OverlayOptions) (Window, error) {
	traits := OverlayTraits(runtime.GOOS)

	// TODO: apply Traits.AllWorkspaces on macOS once the window options
	// expose a collection-behavior flag.
	winOpts := application.WebviewWindowOptions{
		Name:        LabelOverlay,
		Title:       "Captions",
		Width:       opts.Width,
		Height:      opts.Height,
		Frameless:   !traits.Decorated,
		AlwaysOnTop: opts.AlwaysOnTop,
		Hidden:      true,
		URL:         "/overlay.html",
		Windows: application.WindowsWindow{
			HiddenOnTaskbar: traits.SkipTaskbar,
		},
	}
	if traits.Transparent {
		winOpts.BackgroundType = application.BackgroundTypeTransparent
		winOpts.Mac = application.MacWindow{
			Backdrop: application.MacBackdropTransparent,
		}
	} else {
		// Opaque platforms match the default caption background; the
		// frontend provides the visual transparency.
		winOpts.BackgroundColour = application.NewRGB(0, 0, 0)
	}

	w := m.app.Window.NewWithOptions(winOpts)

	m.mu.Lock()
	m.windows[LabelOverlay] = w
	m.mu.Unlock()

	w.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		m.forget(LabelOverlay)
		if opts.OnClosed != nil {
			opts.OnClosed()
		}
	})

	wrapped := &wailsWindow{w: w}
	_ = wrapped.SetPosition(opts.X, opts.Y)
	// Re-apply after construction; helps some Linux window managers.
	_ = wrapped.SetAlwaysOnTop(opts.AlwaysOnTop)
	if opts.ClickThrough {
		_ = wrapped.SetIgnoreMouseEvents(true)
	}
	_ = wrapped.Show()

	return wrapped, nil
}

// wailsWindow adapts *application.WebviewWindow to the Window interface.
// Wails window calls do not report native failures, so these always return
// nil.
type wailsWindow struct {
	w *application.WebviewWindow
}

func (ww *wailsWindow) Show() error {
	ww.w.Show()
	return nil
}

func (ww *wailsWindow) Hide() error {
	ww.w.Hide()
	return nil
}

func (ww *wailsWindow) Close() error {
	ww.w.Close()
	return nil
}

func (ww *wailsWindow) Focus() error {
	ww.w.Focus()
	return nil
}

func (ww *wailsWindow) IsVisible() bool {
	return ww.w.IsVisible()
}

func (ww *wailsWindow) SetPosition(x, y int) error {
	ww.w.SetPosition(x, y)
	return nil
}

func (ww *wailsWindow) SetSize(width, height int) error {
	ww.w.SetSize(width, height)
	return nil
}

func (ww *wailsWindow) SetAlwaysOnTop(onTop bool) error {
	ww.w.SetAlwaysOnTop(onTop)
	return nil
}

func (ww *wailsWindow) SetIgnoreMouseEvents(ignore bool) error {
	ww.w.SetIgnoreMouseEvents(ignore)
	return nil
}

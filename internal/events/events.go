// Package events carries application events from Go to the frontend.
package events

import (
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// Event names shared between the Go side and the frontend.
const (
	// CaptionUpdate carries new caption text to both windows.
	CaptionUpdate = "caption-update"
	// ToggleOverlay asks the frontend to toggle the overlay. Fired by the
	// global hotkey with an empty payload.
	ToggleOverlay = "toggle-overlay"
	// OpenSettings asks the main window to open its settings panel.
	OpenSettings = "open-settings"
	// SettingsChanged announces that persisted settings were replaced.
	SettingsChanged = "settings-changed"
	// OverlayVisibility announces overlay hide/show transitions.
	OverlayVisibility = "overlay:visibility"
	// LogBatch delivers batched log entries to the log viewer.
	LogBatch = "log:batch"
)

// Emitter publishes a named event with a payload.
type Emitter interface {
	Emit(name string, data any)
}

// WailsEmitter emits through the Wails event bus.
type WailsEmitter struct {
	app *application.App
}

// NewWailsEmitter wraps the application's event bus.
func NewWailsEmitter(app *application.App) *WailsEmitter {
	return &WailsEmitter{app: app}
}

func (e *WailsEmitter) Emit(name string, data any) {
	e.app.Event.Emit(name, data)
}

// Recorded is one captured event.
type Recorded struct {
	Name string
	Data any
}

// Recorder collects emitted events for inspection in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Emit(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Name: name, Data: data})
}

// Events returns a copy of everything emitted so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the captured events with the given name.
func (r *Recorder) Named(name string) []Recorded {
	var out []Recorded
	for _, ev := range r.Events() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

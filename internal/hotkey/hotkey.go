// Package hotkey registers the global shortcut that toggles the overlay.
package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.design/x/hotkey"
)

// Manager owns the Ctrl+Shift+O registration. The shortcut works while any
// application has focus, so triggering only emits; the frontend decides what
// toggling means in its current state.
type Manager struct {
	onTrigger func()
	logger    *slog.Logger

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates an unstarted manager. onTrigger runs on the hotkey goroutine.
func New(onTrigger func(), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		onTrigger: onTrigger,
		logger:    logger,
	}
}

// Start registers the shortcut on its own OS thread.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})

	go m.run(m.stopChan, m.doneChan)
}

// Stop unregisters the shortcut and waits for the listener to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	stopChan := m.stopChan
	doneChan := m.doneChan
	m.stopChan = nil
	m.doneChan = nil
	m.mu.Unlock()

	close(stopChan)
	<-doneChan
}

func (m *Manager) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// Keyboard hooks on some platforms are tied to the registering thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyO)
	if err := hk.Register(); err != nil {
		m.logger.Warn(fmt.Sprintf("Failed to register global hotkey Ctrl+Shift+O: %v", err))
		return
	}
	defer hk.Unregister()

	m.logger.Info("Global hotkey registered: Ctrl+Shift+O")

	for {
		select {
		case <-stop:
			return
		case <-hk.Keydown():
			if m.onTrigger != nil {
				m.onTrigger()
			}
		}
	}
}

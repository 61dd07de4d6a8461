package overlay

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jutukuva/overlay-captions/internal/events"
	"github.com/jutukuva/overlay-captions/internal/settings"
	"github.com/jutukuva/overlay-captions/internal/window"
)

type fakeWindow struct {
	mu      sync.Mutex
	visible bool
	closed  bool
	focused bool
	x, y    int
	width   int
	height  int
	onTop   bool
	ignore  bool

	showErr   error
	hideErr   error
	closeErr  error
	ignoreErr error

	showCalls int

	onClosed func()
}

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showCalls++
	if w.showErr != nil {
		return w.showErr
	}
	w.visible = true
	w.focused = false
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hideErr != nil {
		return w.hideErr
	}
	w.visible = false
	return nil
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	if w.closeErr != nil {
		w.mu.Unlock()
		return w.closeErr
	}
	w.closed = true
	w.visible = false
	onClosed := w.onClosed
	w.mu.Unlock()

	if onClosed != nil {
		onClosed()
	}
	return nil
}

func (w *fakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focused = true
	return nil
}

func (w *fakeWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) SetPosition(x, y int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.x, w.y = x, y
	return nil
}

func (w *fakeWindow) SetSize(width, height int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
	return nil
}

func (w *fakeWindow) SetAlwaysOnTop(onTop bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTop = onTop
	return nil
}

func (w *fakeWindow) SetIgnoreMouseEvents(ignore bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ignoreErr != nil {
		return w.ignoreErr
	}
	w.ignore = ignore
	return nil
}

func (w *fakeWindow) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) wasFocused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *fakeWindow) position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

type fakeManager struct {
	mu          sync.Mutex
	windows     map[string]*fakeWindow
	createErr   error
	createCalls int
	lastOpts    window.OverlayOptions
}

func newFakeManager() *fakeManager {
	m := &fakeManager{windows: make(map[string]*fakeWindow)}
	m.windows[window.LabelMain] = &fakeWindow{visible: true}
	return m
}

func (m *fakeManager) Get(label string) (window.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[label]
	if !ok {
		return nil, false
	}
	return w, true
}

func (m *fakeManager) CreateOverlay(opts window.OverlayOptions) (window.Window, error) {
	m.mu.Lock()
	m.createCalls++
	m.lastOpts = opts
	if m.createErr != nil {
		err := m.createErr
		m.mu.Unlock()
		return nil, err
	}

	w := &fakeWindow{
		visible: true,
		x:       opts.X,
		y:       opts.Y,
		width:   opts.Width,
		height:  opts.Height,
		onTop:   opts.AlwaysOnTop,
		ignore:  opts.ClickThrough,
	}
	w.onClosed = func() {
		m.mu.Lock()
		delete(m.windows, window.LabelOverlay)
		m.mu.Unlock()
		if opts.OnClosed != nil {
			opts.OnClosed()
		}
	}
	m.windows[window.LabelOverlay] = w
	m.mu.Unlock()
	return w, nil
}

func (m *fakeManager) main() *fakeWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windows[window.LabelMain]
}

func (m *fakeManager) overlay(t *testing.T) *fakeWindow {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[window.LabelOverlay]
	if !ok {
		t.Fatal("overlay window not created")
	}
	return w
}

func (m *fakeManager) hasOverlay() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.windows[window.LabelOverlay]
	return ok
}

func (m *fakeManager) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

type fakeSettings struct {
	overlay settings.OverlaySettings
}

func (s *fakeSettings) Overlay() settings.OverlaySettings {
	return s.overlay
}

func newTestController(t *testing.T) (*Controller, *fakeManager, *events.Recorder) {
	t.Helper()
	m := newFakeManager()
	rec := &events.Recorder{}
	src := &fakeSettings{overlay: settings.Default().Overlay}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewController(m, src, rec, logger), m, rec
}

func TestShowCreatesOverlayFromSettings(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got := m.creates(); got != 1 {
		t.Fatalf("create calls = %d, want 1", got)
	}
	if !c.Visible() {
		t.Error("Visible() = false after successful show")
	}

	opts := m.lastOpts
	if opts.X != 500 || opts.Y != 600 {
		t.Errorf("overlay position = (%d, %d), want (500, 600)", opts.X, opts.Y)
	}
	if opts.Width != 600 || opts.Height != 160 {
		t.Errorf("overlay size = %dx%d, want 600x160", opts.Width, opts.Height)
	}
	if !opts.AlwaysOnTop {
		t.Error("overlay created without always-on-top")
	}
	if opts.ClickThrough {
		t.Error("overlay created click-through with default settings")
	}
}

func TestShowTwiceCreatesOneWindow(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("first Show() error = %v", err)
	}
	if err := c.Show(); err != nil {
		t.Fatalf("second Show() error = %v", err)
	}
	if got := m.creates(); got != 1 {
		t.Errorf("create calls = %d, want 1", got)
	}
}

func TestShowAfterHideReusesWindow(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.Hide(); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if c.Visible() {
		t.Error("Visible() = true after hide")
	}
	if err := c.Show(); err != nil {
		t.Fatalf("Show() after hide error = %v", err)
	}
	if got := m.creates(); got != 1 {
		t.Errorf("create calls = %d, want 1", got)
	}
	if !m.overlay(t).IsVisible() {
		t.Error("overlay window hidden after second show")
	}
}

func TestHideWithoutOverlayClearsFlag(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Hide(); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if c.Visible() {
		t.Error("Visible() = true with no overlay window")
	}
	if got := m.creates(); got != 0 {
		t.Errorf("create calls = %d, want 0", got)
	}
}

func TestCreateFailureLeavesFlagCleared(t *testing.T) {
	c, m, rec := newTestController(t)
	m.createErr = errors.New("native window create failed")

	err := c.Show()
	if err == nil {
		t.Fatal("Show() succeeded despite create failure")
	}
	if c.Visible() {
		t.Error("Visible() = true after failed create")
	}
	if m.hasOverlay() {
		t.Error("overlay window registered after failed create")
	}
	if got := rec.Named(events.OverlayVisibility); len(got) != 0 {
		t.Errorf("visibility events = %d, want 0", len(got))
	}
}

func TestToggleFlipsVisibility(t *testing.T) {
	c, m, _ := newTestController(t)

	visible, err := c.Toggle()
	if err != nil {
		t.Fatalf("first Toggle() error = %v", err)
	}
	if !visible || !c.Visible() {
		t.Fatal("first toggle did not show overlay")
	}

	visible, err = c.Toggle()
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if visible || c.Visible() {
		t.Fatal("second toggle did not hide overlay")
	}

	ow := m.overlay(t)
	if ow.isClosed() {
		t.Error("toggle closed the overlay instead of hiding it")
	}
	if got := m.creates(); got != 1 {
		t.Errorf("create calls = %d, want 1", got)
	}
}

func TestConcurrentTogglesStaySerialized(t *testing.T) {
	c, m, _ := newTestController(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2; j++ {
				if _, err := c.Toggle(); err != nil {
					t.Errorf("Toggle() error = %v", err)
				}
			}
		}()
	}
	wg.Wait()

	// 20 flips from hidden always land back on hidden.
	if c.Visible() {
		t.Error("Visible() = true after an even number of toggles")
	}
	if got := m.creates(); got != 1 {
		t.Errorf("create calls = %d, want 1", got)
	}
}

func TestShowMainHidesOverlay(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.ShowMain(); err != nil {
		t.Fatalf("ShowMain() error = %v", err)
	}

	if c.Visible() {
		t.Error("Visible() = true after ShowMain")
	}
	ow := m.overlay(t)
	if ow.IsVisible() {
		t.Error("overlay still visible after ShowMain")
	}
	if ow.isClosed() {
		t.Error("ShowMain closed the overlay instead of hiding it")
	}
	mw := m.main()
	if !mw.IsVisible() || !mw.wasFocused() {
		t.Error("main window not shown and focused")
	}
}

func TestShowMainWithoutOverlay(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.ShowMain(); err != nil {
		t.Fatalf("ShowMain() error = %v", err)
	}
	mw := m.main()
	if !mw.IsVisible() || !mw.wasFocused() {
		t.Error("main window not shown and focused")
	}
}

func TestShowMainSurvivesOverlayHideFailure(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	m.overlay(t).hideErr = errors.New("native hide failed")

	if err := c.ShowMain(); err != nil {
		t.Fatalf("ShowMain() error = %v", err)
	}
	if c.Visible() {
		t.Error("Visible() = true after ShowMain")
	}
	if !m.main().wasFocused() {
		t.Error("main window not focused after overlay hide failure")
	}
}

func TestMainClosingClosesOverlay(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	ow := m.overlay(t)

	c.HandleMainClosing()

	if !ow.isClosed() {
		t.Error("overlay not closed when main window closes")
	}
	if m.hasOverlay() {
		t.Error("overlay still registered after main close")
	}
	if c.Visible() {
		t.Error("Visible() = true after main close")
	}
}

func TestOverlayCloseLeavesMainAlone(t *testing.T) {
	c, m, _ := newTestController(t)

	// Overlay-only mode: main hidden, overlay up.
	c.showFromTray()
	mw := m.main()
	if mw.IsVisible() {
		t.Fatal("main window still visible in overlay-only mode")
	}
	shows := mw.showCalls

	// User closes the overlay window directly.
	if err := m.overlay(t).Close(); err != nil {
		t.Fatalf("overlay Close() error = %v", err)
	}

	if c.Visible() {
		t.Error("Visible() = true after overlay closed")
	}
	if m.hasOverlay() {
		t.Error("overlay still registered after close")
	}
	if mw.IsVisible() {
		t.Error("main window reappeared after overlay close")
	}
	if mw.showCalls != shows {
		t.Error("main window shown by overlay close handler")
	}
}

func TestTrayShowsOverlayAndHidesMain(t *testing.T) {
	c, m, _ := newTestController(t)

	c.showFromTray()

	if !c.Visible() {
		t.Error("Visible() = false after tray switch")
	}
	if m.main().IsVisible() {
		t.Error("main window still visible after tray switch")
	}
	if !m.overlay(t).IsVisible() {
		t.Error("overlay not visible after tray switch")
	}
}

func TestTrayCreateFailureRestoresMain(t *testing.T) {
	c, m, _ := newTestController(t)
	m.createErr = errors.New("native window create failed")

	c.showFromTray()

	if c.Visible() {
		t.Error("Visible() = true after failed tray switch")
	}
	mw := m.main()
	if !mw.IsVisible() {
		t.Error("main window not restored after failed tray switch")
	}
	if !mw.wasFocused() {
		t.Error("main window not focused after failed tray switch")
	}
}

func TestSetPositionWithoutOverlayIsNoOp(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.SetPosition(10, 20); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if err := c.SetSize(800, 200); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	if err := c.SetClickThrough(true); err != nil {
		t.Fatalf("SetClickThrough() error = %v", err)
	}
	if got := m.creates(); got != 0 {
		t.Errorf("create calls = %d, want 0", got)
	}
}

func TestSetPositionMovesOverlay(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.SetPosition(40, 50); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if x, y := m.overlay(t).position(); x != 40 || y != 50 {
		t.Errorf("overlay position = (%d, %d), want (40, 50)", x, y)
	}
}

func TestSetClickThroughFailureSurfaces(t *testing.T) {
	c, m, _ := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	m.overlay(t).ignoreErr = errors.New("native call failed")

	if err := c.SetClickThrough(true); err == nil {
		t.Error("SetClickThrough() succeeded despite native failure")
	}
}

func TestVisibilityEventsFollowTransitions(t *testing.T) {
	c, _, rec := newTestController(t)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.Hide(); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	// Repeated show must not emit a duplicate.
	if err := c.Show(); err != nil {
		t.Fatalf("repeated Show() error = %v", err)
	}

	got := rec.Named(events.OverlayVisibility)
	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("visibility events = %d, want %d", len(got), len(want))
	}
	for i, ev := range got {
		payload, ok := ev.Data.(VisibilityEvent)
		if !ok {
			t.Fatalf("event %d payload type = %T", i, ev.Data)
		}
		if payload.Visible != want[i] {
			t.Errorf("event %d visible = %v, want %v", i, payload.Visible, want[i])
		}
	}
}

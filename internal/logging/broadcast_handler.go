// Package logging provides the slog plumbing shared by the file log, the
// console and the frontend log viewer.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is the shape a log record takes on its way to the frontend.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// BroadcastHandler wraps another slog.Handler and additionally keeps a
// bounded in-memory history and forwards entries to the frontend through its
// Emitter.
type BroadcastHandler struct {
	inner slog.Handler

	// Emitter pushes entries to the frontend once started.
	Emitter *EventEmitter

	mu      sync.Mutex
	history []LogEntry
	maxSize int
}

// NewBroadcastHandler wraps inner and keeps up to maxHistory entries for the
// log viewer.
func NewBroadcastHandler(inner slog.Handler, maxHistory int) *BroadcastHandler {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &BroadcastHandler{
		inner:   inner,
		Emitter: NewEventEmitter(),
		history: make([]LogEntry, 0, maxHistory),
		maxSize: maxHistory,
	}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := entryFromRecord(r)

	h.mu.Lock()
	if len(h.history) >= h.maxSize {
		h.history = h.history[1:]
	}
	h.history = append(h.history, entry)
	h.mu.Unlock()

	h.Emitter.Emit(entry)

	return h.inner.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	return h
}

// RecentEntries returns up to count entries, oldest first.
func (h *BroadcastHandler) RecentEntries(count int) []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if count <= 0 || count > len(h.history) {
		count = len(h.history)
	}
	out := make([]LogEntry, count)
	copy(out, h.history[len(h.history)-count:])
	return out
}

func entryFromRecord(r slog.Record) LogEntry {
	message := r.Message

	var attrs []string
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})
	if len(attrs) > 0 {
		message = message + " " + strings.Join(attrs, " ")
	}

	level := "INFO"
	switch r.Level {
	case slog.LevelDebug:
		level = "DEBUG"
	case slog.LevelWarn:
		level = "WARN"
	case slog.LevelError:
		level = "ERROR"
	}

	return LogEntry{
		Timestamp: time.Now().Format("2006-01-02 15:04:05.000"),
		Level:     level,
		Message:   message,
	}
}

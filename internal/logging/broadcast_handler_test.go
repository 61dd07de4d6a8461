package logging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutukuva/overlay-captions/internal/events"
)

// captureHandler records messages passed through to the wrapped handler.
type captureHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, r.Message)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	copy(out, h.messages)
	return out
}

func TestBroadcastHandler_ForwardsToInner(t *testing.T) {
	inner := &captureHandler{}
	handler := NewBroadcastHandler(inner, 100)
	logger := slog.New(handler)

	logger.Info("hello")
	logger.Warn("careful")

	assert.Equal(t, []string{"hello", "careful"}, inner.Messages())
}

func TestBroadcastHandler_HistoryBounded(t *testing.T) {
	handler := NewBroadcastHandler(&captureHandler{}, 3)
	logger := slog.New(handler)

	for i := 1; i <= 5; i++ {
		logger.Info(fmt.Sprintf("message %d", i))
	}

	entries := handler.RecentEntries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "message 3", entries[0].Message)
	assert.Equal(t, "message 5", entries[2].Message)
}

func TestBroadcastHandler_RecentEntriesSubset(t *testing.T) {
	handler := NewBroadcastHandler(&captureHandler{}, 100)
	logger := slog.New(handler)

	logger.Info("one")
	logger.Info("two")
	logger.Info("three")

	entries := handler.RecentEntries(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Message)
	assert.Equal(t, "three", entries[1].Message)

	all := handler.RecentEntries(50)
	assert.Len(t, all, 3)
}

func TestBroadcastHandler_EntryLevelsAndAttrs(t *testing.T) {
	handler := NewBroadcastHandler(&captureHandler{}, 100)
	logger := slog.New(handler)

	logger.Error("failed", "session", "ABC123")
	logger.Warn("slow")
	logger.Info("fine")

	entries := handler.RecentEntries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Contains(t, entries[0].Message, "session=ABC123")
	assert.Equal(t, "WARN", entries[1].Level)
	assert.Equal(t, "INFO", entries[2].Level)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestEventEmitter_BatchesToSink(t *testing.T) {
	handler := NewBroadcastHandler(&captureHandler{}, 100)
	logger := slog.New(handler)

	recorder := &events.Recorder{}
	handler.Emitter.Start(recorder)
	defer handler.Emitter.Stop()

	logger.Info("first")
	logger.Info("second")
	logger.Info("third")

	assert.Eventually(t, func() bool {
		total := 0
		for _, ev := range recorder.Named(events.LogBatch) {
			batch, ok := ev.Data.([]LogEntry)
			if !ok {
				return false
			}
			total += len(batch)
		}
		return total == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventEmitter_DropsWhenStopped(t *testing.T) {
	emitter := NewEventEmitter()
	assert.False(t, emitter.IsEnabled())

	// Without Start the entry goes nowhere and nothing blocks.
	emitter.Emit(LogEntry{Level: "INFO", Message: "ignored"})

	recorder := &events.Recorder{}
	emitter.Start(recorder)
	assert.True(t, emitter.IsEnabled())
	emitter.Stop()
	assert.False(t, emitter.IsEnabled())

	emitter.Emit(LogEntry{Level: "INFO", Message: "also ignored"})
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, recorder.Named(events.LogBatch))
}

func TestEventEmitter_StopDrainsQueue(t *testing.T) {
	emitter := NewEventEmitter()
	recorder := &events.Recorder{}
	emitter.Start(recorder)

	for i := 0; i < 25; i++ {
		emitter.Emit(LogEntry{Level: "INFO", Message: fmt.Sprintf("entry %d", i)})
	}
	emitter.Stop()

	total := 0
	for _, ev := range recorder.Named(events.LogBatch) {
		batch, ok := ev.Data.([]LogEntry)
		require.True(t, ok)
		total += len(batch)
	}
	assert.Equal(t, 25, total)
}

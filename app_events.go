// app_events.go - caption broadcast and frontend notifications
// The caption text travels UI -> Go -> all windows so that the overlay
// receives updates even while the main window is hidden.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jutukuva/overlay-captions/internal/events"
)

// CaptionPayload is the payload of the caption-update event.
type CaptionPayload struct {
	Text string `json:"text"`
}

// BroadcastCaption publishes new caption text to every listening window and
// records it in the transcript. The text itself is opaque here; zero
// listeners is success.
func (a *App) BroadcastCaption(text string) error {
	a.logger.Info(fmt.Sprintf("Broadcasting caption: %s", truncateCaption(text, 50)))

	a.emitter.Emit(events.CaptionUpdate, CaptionPayload{Text: text})

	a.recordCaption(text)
	return nil
}

// recordCaption appends the caption to the transcript under the last joined
// session code. Transcript failures are logged, never surfaced: losing one
// history line must not break the live caption stream.
func (a *App) recordCaption(text string) {
	a.mu.RLock()
	service := a.transcriptService
	a.mu.RUnlock()

	if service == nil {
		return
	}

	sessionCode := ""
	if code := a.GetLastSessionCode(); code != nil {
		sessionCode = *code
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := service.Record(ctx, sessionCode, text); err != nil {
		a.logger.Warn(fmt.Sprintf("Failed to record caption: %v", err))
	}
}

// truncateCaption shortens caption text for log output.
func truncateCaption(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// app_api_transcript.go - caption history API (Wails bindings)
// Read access to the SQLite caption transcript. All APIs degrade to empty
// results when the transcript is disabled in the configuration.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jutukuva/overlay-captions/internal/transcript"
)

// ============================================================
// Caption transcript API
// ============================================================

// GetTranscriptSessions lists recorded sessions, most recently active first.
func (a *App) GetTranscriptSessions() ([]*transcript.SessionSummary, error) {
	store := a.captionStore()
	if store == nil {
		return []*transcript.SessionSummary{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summaries, err := store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transcript sessions: %w", err)
	}
	if summaries == nil {
		summaries = []*transcript.SessionSummary{}
	}
	return summaries, nil
}

// GetSessionTranscript returns up to limit captions of one session in
// chronological order. limit <= 0 returns the whole session.
func (a *App) GetSessionTranscript(sessionCode string, limit int) ([]*transcript.CaptionRecord, error) {
	store := a.captionStore()
	if store == nil {
		return []*transcript.CaptionRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := store.RecentBySession(ctx, sessionCode, limit)
	if err != nil {
		return nil, fmt.Errorf("load session transcript: %w", err)
	}
	if records == nil {
		records = []*transcript.CaptionRecord{}
	}
	return records, nil
}

// ClearSessionTranscript deletes the stored captions of one session.
func (a *App) ClearSessionTranscript(sessionCode string) error {
	store := a.captionStore()
	if store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.DeleteSession(ctx, sessionCode); err != nil {
		a.logger.Error(fmt.Sprintf("Failed to clear session transcript: %v", err))
		return fmt.Errorf("clear session transcript: %w", err)
	}

	a.logger.Info("Session transcript cleared", "session", sessionCode)
	return nil
}

// captionStore returns the caption store, or nil when the transcript is
// disabled or failed to open.
func (a *App) captionStore() transcript.Store {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transcriptStore
}

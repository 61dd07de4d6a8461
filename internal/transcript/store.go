package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// CaptionRecord is one stored caption line.
type CaptionRecord struct {
	ID          string    `json:"id"`
	SessionCode string    `json:"sessionCode"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SessionSummary describes one recorded session.
type SessionSummary struct {
	SessionCode string    `json:"sessionCode"`
	Captions    int       `json:"captions"`
	LastSeen    time.Time `json:"lastSeen"`
}

// Store defines caption history storage.
type Store interface {
	Append(ctx context.Context, record *CaptionRecord) error
	RecentBySession(ctx context.Context, sessionCode string, limit int) ([]*CaptionRecord, error)
	Sessions(ctx context.Context) ([]*SessionSummary, error)
	Count(ctx context.Context) (int, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteSession(ctx context.Context, sessionCode string) error
}

// SQLiteCaptionStore implements Store on a SQLite connection.
type SQLiteCaptionStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCaptionStore creates a caption store on db.
func NewSQLiteCaptionStore(db *sql.DB) *SQLiteCaptionStore {
	return &SQLiteCaptionStore{db: db}
}

// timeLayout is the storage format for created_at; UTC, sortable as text.
const timeLayout = "2006-01-02 15:04:05.999999"

// Append stores one caption line.
func (s *SQLiteCaptionStore) Append(ctx context.Context, record *CaptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT INTO captions (id, session_code, text, created_at) VALUES (?, ?, ?, ?)`

	_, err := execWithSQLiteBusyRetry(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query,
			record.ID, record.SessionCode, record.Text,
			record.CreatedAt.UTC().Format(timeLayout),
		)
	})
	if err != nil {
		return fmt.Errorf("append caption: %w", err)
	}

	return nil
}

// RecentBySession returns up to limit of the newest captions for a session,
// in chronological order. limit <= 0 means no limit.
func (s *SQLiteCaptionStore) RecentBySession(ctx context.Context, sessionCode string, limit int) ([]*CaptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}

	query := `
		SELECT id, session_code, text, created_at
		FROM captions
		WHERE session_code = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := queryRowsWithSQLiteBusyRetry(ctx, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query, sessionCode, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("query session captions: %w", err)
	}
	defer rows.Close()

	var records []*CaptionRecord
	for rows.Next() {
		var record CaptionRecord
		var createdAt string

		if err := rows.Scan(&record.ID, &record.SessionCode, &record.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan caption record: %w", err)
		}
		record.CreatedAt = parseSQLiteDateTime(createdAt)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate caption records: %w", err)
	}

	// Newest-first from the query, oldest-first for the caller.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

// Sessions lists recorded sessions, most recently active first.
func (s *SQLiteCaptionStore) Sessions(ctx context.Context) ([]*SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT session_code, COUNT(*) AS captions, MAX(created_at) AS last_seen
		FROM captions
		GROUP BY session_code
		ORDER BY last_seen DESC
	`

	rows, err := queryRowsWithSQLiteBusyRetry(ctx, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []*SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var lastSeen string

		if err := rows.Scan(&summary.SessionCode, &summary.Captions, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		summary.LastSeen = parseSQLiteDateTime(lastSeen)
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session summaries: %w", err)
	}

	return summaries, nil
}

// Count returns the total number of stored captions.
func (s *SQLiteCaptionStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM captions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count captions: %w", err)
	}

	return count, nil
}

// PurgeOlderThan deletes captions created before cutoff and returns how many
// were removed.
func (s *SQLiteCaptionStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `DELETE FROM captions WHERE created_at < ?`

	result, err := execWithSQLiteBusyRetry(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, cutoff.UTC().Format(timeLayout))
	})
	if err != nil {
		return 0, fmt.Errorf("purge captions: %w", err)
	}

	removed, _ := result.RowsAffected()
	return removed, nil
}

// DeleteSession removes all captions of one session. Deleting a session with
// no captions is not an error.
func (s *SQLiteCaptionStore) DeleteSession(ctx context.Context, sessionCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `DELETE FROM captions WHERE session_code = ?`

	_, err := execWithSQLiteBusyRetry(ctx, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, sessionCode)
	})
	if err != nil {
		return fmt.Errorf("delete session captions: %w", err)
	}

	return nil
}

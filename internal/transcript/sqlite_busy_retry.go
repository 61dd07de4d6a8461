package transcript

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// isSQLiteBusyError matches on the message so no driver error types leak in.
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked")
}

func queryRowsWithSQLiteBusyRetry(ctx context.Context, queryFn func() (*sql.Rows, error)) (*sql.Rows, error) {
	if ctx == nil {
		return queryFn()
	}

	backoff := 30 * time.Millisecond
	for {
		rows, err := queryFn()
		if err == nil || !isSQLiteBusyError(err) {
			return rows, err
		}

		// Once the caller has cancelled, surface the last busy error.
		if ctx.Err() != nil {
			return nil, err
		}

		wait := backoff
		if wait > 500*time.Millisecond {
			wait = 500 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}

		backoff *= 2
	}
}

func execWithSQLiteBusyRetry(ctx context.Context, execFn func() (sql.Result, error)) (sql.Result, error) {
	if ctx == nil {
		return execFn()
	}

	backoff := 30 * time.Millisecond
	for {
		result, err := execFn()
		if err == nil || !isSQLiteBusyError(err) {
			return result, err
		}

		if ctx.Err() != nil {
			return nil, err
		}

		wait := backoff
		if wait > 500*time.Millisecond {
			wait = 500 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}

		backoff *= 2
	}
}

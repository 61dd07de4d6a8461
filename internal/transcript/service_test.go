package transcript

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, *SQLiteCaptionStore, func()) {
	t.Helper()

	db, cleanup := createTestDB(t)
	store := NewSQLiteCaptionStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, 24*time.Hour, time.Hour, logger)
	return svc, store, cleanup
}

func TestServiceRecordStoresCaption(t *testing.T) {
	svc, store, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if err := svc.Record(ctx, "KJQ7PX", "tere tulemast"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	records, err := store.RecentBySession(ctx, "KJQ7PX", 10)
	if err != nil {
		t.Fatalf("RecentBySession: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].ID == "" {
		t.Error("record ID is empty")
	}
	if records[0].Text != "tere tulemast" {
		t.Errorf("Text = %q, want %q", records[0].Text, "tere tulemast")
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestServiceRecordSkipsBlankInput(t *testing.T) {
	svc, store, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if err := svc.Record(ctx, "KJQ7PX", "   "); err != nil {
		t.Fatalf("Record(blank text): %v", err)
	}
	if err := svc.Record(ctx, "", "tekst ilma sessioonita"); err != nil {
		t.Fatalf("Record(blank session): %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestServiceRecordGeneratesUniqueIDs(t *testing.T) {
	svc, store, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if err := svc.Record(ctx, "KJQ7PX", "esimene"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(ctx, "KJQ7PX", "teine"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	records, err := store.RecentBySession(ctx, "KJQ7PX", 10)
	if err != nil {
		t.Fatalf("RecentBySession: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Errorf("duplicate record IDs: %q", records[0].ID)
	}
}

func TestServicePurgeOnceHonorsRetention(t *testing.T) {
	svc, store, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Now().UTC()

	appendCaption(t, store, "KJQ7PX", "aegunud", now.Add(-30*time.Hour))
	appendCaption(t, store, "KJQ7PX", "kehtiv", now.Add(-time.Hour))

	svc.purgeOnce()

	records, err := store.RecentBySession(ctx, "KJQ7PX", 10)
	if err != nil {
		t.Fatalf("RecentBySession: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Text != "kehtiv" {
		t.Errorf("surviving caption = %q, want %q", records[0].Text, "kehtiv")
	}
}

func TestServiceStartStop(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	svc.Start()
	// Second start must not spawn a second loop.
	svc.Start()
	svc.Close()
	// Close after close is a no-op.
	svc.Close()
}

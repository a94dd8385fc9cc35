package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nezarts/jewelry-catalog/internal/domain"
)

func newLogDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:log_repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := Migrate(db, LogMigrations()); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// seedLog inserts an entry with a fixed timestamp so ordering is deterministic.
func seedLog(t *testing.T, db *gorm.DB, ts time.Time, level, category, message string) {
	t.Helper()
	e := &domain.LogEntry{Timestamp: ts, Level: level, Category: category, Message: message}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("seed log %q: %v", message, err)
	}
}

func TestInsertLog_StampsTimestampAndPersists(t *testing.T) {
	db := newLogDB(t, true)

	start := time.Now().UTC().Add(-time.Minute)
	e, err := InsertLog(context.Background(), db, domain.LogLevelInfo, "Product", "Created new product #NK-001", `{"product_id":1}`)
	if err != nil {
		t.Fatalf("InsertLog: %v", err)
	}
	if e.ID == 0 {
		t.Fatalf("expected store-assigned id")
	}
	if e.Timestamp.Before(start) {
		t.Fatalf("Timestamp seems unset: %v", e.Timestamp)
	}

	var got domain.LogEntry
	if err := db.First(&got, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if got.Level != domain.LogLevelInfo || got.Category != "Product" || got.Details != `{"product_id":1}` {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestInsertLog_Error_NoTable(t *testing.T) {
	db := newLogDB(t, false)
	if _, err := InsertLog(context.Background(), db, domain.LogLevelInfo, "System", "x", ""); err == nil {
		t.Fatalf("expected error inserting without table")
	}
}

func TestListLogs_NewestFirst(t *testing.T) {
	db := newLogDB(t, true)

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	seedLog(t, db, t1, domain.LogLevelInfo, "A", "oldest")
	seedLog(t, db, t3, domain.LogLevelInfo, "A", "newest")
	seedLog(t, db, t2, domain.LogLevelInfo, "A", "middle")

	out, err := ListLogs(context.Background(), db, LogFilter{})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[0].Message != "newest" || out[1].Message != "middle" || out[2].Message != "oldest" {
		t.Fatalf("unexpected order: %q %q %q", out[0].Message, out[1].Message, out[2].Message)
	}
}

func TestListLogs_FiltersCombineAsAND(t *testing.T) {
	db := newLogDB(t, true)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seedLog(t, db, base.Add(1*time.Minute), domain.LogLevelError, "A", "err-A-1")
	seedLog(t, db, base.Add(2*time.Minute), domain.LogLevelError, "B", "err-B")
	seedLog(t, db, base.Add(3*time.Minute), domain.LogLevelWarning, "A", "warn-A")
	seedLog(t, db, base.Add(4*time.Minute), domain.LogLevelInfo, "A", "info-A")
	seedLog(t, db, base.Add(5*time.Minute), domain.LogLevelError, "A", "err-A-2")

	out, err := ListLogs(context.Background(), db, LogFilter{
		Level:    domain.LogLevelError,
		Category: "A",
	})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 matches, got %d: %#v", len(out), out)
	}
	if out[0].Message != "err-A-2" || out[1].Message != "err-A-1" {
		t.Fatalf("expected newest-first error/A entries, got %q %q", out[0].Message, out[1].Message)
	}
}

func TestListLogs_TimestampRangeInclusive(t *testing.T) {
	db := newLogDB(t, true)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seedLog(t, db, base, domain.LogLevelInfo, "A", "at-start")
	seedLog(t, db, base.Add(time.Hour), domain.LogLevelInfo, "A", "inside")
	seedLog(t, db, base.Add(2*time.Hour), domain.LogLevelInfo, "A", "at-end")
	seedLog(t, db, base.Add(3*time.Hour), domain.LogLevelInfo, "A", "after")

	start := base
	end := base.Add(2 * time.Hour)
	out, err := ListLogs(context.Background(), db, LogFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected inclusive range to match 3 entries, got %d", len(out))
	}
	if out[0].Message != "at-end" || out[2].Message != "at-start" {
		t.Fatalf("unexpected range result: %#v", out)
	}
}

func TestListLogs_LimitTruncates(t *testing.T) {
	db := newLogDB(t, true)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedLog(t, db, base.Add(time.Duration(i)*time.Minute), domain.LogLevelInfo, "A", fmt.Sprintf("m%d", i))
	}

	out, err := ListLogs(context.Background(), db, LogFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(out) != 2 || out[0].Message != "m4" || out[1].Message != "m3" {
		t.Fatalf("expected the 2 newest entries, got %#v", out)
	}
}

func TestClearLogs_RemovesEverything(t *testing.T) {
	db := newLogDB(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := InsertLog(ctx, db, domain.LogLevelInfo, "A", fmt.Sprintf("m%d", i), ""); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := ClearLogs(ctx, db); err != nil {
		t.Fatalf("ClearLogs: %v", err)
	}
	total, err := CountLogs(ctx, db)
	if err != nil {
		t.Fatalf("CountLogs: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty log store, got %d rows", total)
	}
}

func TestCountLogs_Error_NoTable(t *testing.T) {
	db := newLogDB(t, false)
	if _, err := CountLogs(context.Background(), db); err == nil {
		t.Fatalf("expected error when table missing")
	}
}

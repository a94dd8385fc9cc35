// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only log store. Log rows are immutable: there is no update
// function, only append, filtered reads, and an unconditional clear.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nezarts/jewelry-catalog/internal/domain"
)

// LogFilter narrows a log query. All provided filters combine as a
// logical AND: exact match on Level and Category, inclusive range on the
// timestamp. A zero Limit means no truncation.
type LogFilter struct {
	Level    string
	Category string
	Start    *time.Time
	End      *time.Time
	Limit    int
}

// InsertLog appends one immutable log row stamped with the current UTC
// time. Details must already be serialized; pass "" when absent.
func InsertLog(ctx context.Context, db *gorm.DB, level, category, message, details string) (*domain.LogEntry, error) {
	e := &domain.LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Category:  category,
		Message:   message,
		Details:   details,
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListLogs returns the entries matching f, newest first (timestamp
// descending, id descending as tiebreak), truncated to f.Limit when set.
// Filters are pushed into the query so the level/category/timestamp
// indexes can serve the scan.
func ListLogs(ctx context.Context, db *gorm.DB, f LogFilter) ([]domain.LogEntry, error) {
	q := db.WithContext(ctx).Model(&domain.LogEntry{})
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Start != nil {
		q = q.Where("timestamp >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("timestamp <= ?", *f.End)
	}
	q = q.Order("timestamp desc, id desc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []domain.LogEntry
	err := q.Find(&out).Error
	return out, err
}

// CountLogs uses a raw COUNT so a missing table surfaces as an error.
func CountLogs(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM logs").Scan(&total).Error
	return total, err
}

// ClearLogs removes all log rows unconditionally. No soft-delete, no
// archival.
func ClearLogs(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("DELETE FROM logs").Error
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and the versioned schema migration manager.
//
// Two independent schema domains exist: the catalog database (products +
// images, schema version 2) and the log database (logs, schema version 1).
// They never share a connection or a version counter.
package repo

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/nezarts/jewelry-catalog/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	// PRAGMAs go through the DSN so they reach every pooled connection,
	// not just the one a plain Exec would run on.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// MigrationStep is one versioned schema change. Steps are applied in
// ascending Version order; each runs inside its own transaction so a
// failing step leaves no partial schema behind.
type MigrationStep struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

// schemaMigration records an applied migration step.
type schemaMigration struct {
	Version   int    `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(128);not null"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// SchemaVersion returns the highest applied migration version, or 0 when
// no migration has run yet.
func SchemaVersion(db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&schemaMigration{}) {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.Model(&schemaMigration{}).Select("MAX(version)").Scan(&v).Error; err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// Migrate applies the pending steps to db. Steps at or below the
// persisted version are skipped, so calling Migrate twice at the same
// version performs no destructive action. A step that returns an error
// aborts the open: its transaction rolls back and the recorded version
// stays where it was.
func Migrate(db *gorm.DB, steps []MigrationStep) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return err
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	sorted := append([]MigrationStep(nil), steps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, step := range sorted {
		if step.Version <= current {
			continue
		}
		if step.Run == nil {
			return fmt.Errorf("migration %d (%s) has no Run func", step.Version, step.Name)
		}
		s := step
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := s.Run(tx); err != nil {
				return fmt.Errorf("migration %d (%s): %w", s.Version, s.Name, err)
			}
			return tx.Create(&schemaMigration{
				Version:   s.Version,
				Name:      s.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return err
		}
		current = s.Version
	}
	return nil
}

// CatalogMigrations returns the migration steps for the catalog database
// (products at v1, images at v2).
func CatalogMigrations() []MigrationStep {
	return []MigrationStep{
		{
			Version: 1,
			Name:    "create products store",
			Run: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Product{})
			},
		},
		{
			Version: 2,
			Name:    "create images store",
			Run: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.ProductImage{})
			},
		},
	}
}

// LogMigrations returns the migration steps for the log database.
func LogMigrations() []MigrationStep {
	return []MigrationStep{
		{
			Version: 1,
			Name:    "create logs store",
			Run: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.LogEntry{})
			},
		},
	}
}

// OpenCatalog opens the catalog database at path and brings its schema to
// the current version.
func OpenCatalog(path string) (*gorm.DB, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, CatalogMigrations()); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

// OpenLogs opens the log database at path and brings its schema to the
// current version.
func OpenLogs(path string) (*gorm.DB, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, LogMigrations()); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

// CloseDB releases the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package domain

import (
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Product{}).TableName() != "products" {
		t.Fatalf("Product.TableName() = %q; want %q", (Product{}).TableName(), "products")
	}
	if (ProductImage{}).TableName() != "images" {
		t.Fatalf("ProductImage.TableName() = %q; want %q", (ProductImage{}).TableName(), "images")
	}
	if (LogEntry{}).TableName() != "logs" {
		t.Fatalf("LogEntry.TableName() = %q; want %q", (LogEntry{}).TableName(), "logs")
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories() {
		if !ValidCategory(c) {
			t.Fatalf("expected %q to be a valid category", c)
		}
	}
	for _, c := range []string{"", "all", "watches", "Necklace-Set"} {
		if ValidCategory(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestValidLogLevel(t *testing.T) {
	for _, l := range []string{LogLevelInfo, LogLevelWarning, LogLevelError} {
		if !ValidLogLevel(l) {
			t.Fatalf("expected %q to be a valid level", l)
		}
	}
	for _, l := range []string{"", "debug", "INFO", "warn"} {
		if ValidLogLevel(l) {
			t.Fatalf("expected %q to be rejected", l)
		}
	}
}

func TestMigrations_TablesAndIndexes(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Product{}, &ProductImage{}, &LogEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&Product{}, &ProductImage{}, &LogEntry{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Indexes from tags exist
	if !m.HasIndex(&Product{}, "ux_products_number") {
		t.Fatalf("expected unique index ux_products_number on products")
	}
	if !m.HasIndex(&Product{}, "idx_products_category") {
		t.Fatalf("expected index idx_products_category on products")
	}
	if !m.HasIndex(&ProductImage{}, "idx_images_product") {
		t.Fatalf("expected index idx_images_product on images")
	}
	for _, idx := range []string{"idx_logs_timestamp", "idx_logs_level", "idx_logs_category"} {
		if !m.HasIndex(&LogEntry{}, idx) {
			t.Fatalf("expected index %s on logs", idx)
		}
	}
}

func TestProductNumberUniqueIndex_RejectsDuplicate(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	p1 := &Product{ProductNumber: "NK-001", Category: CategoryNecklaceSet, Price: 10}
	if err := db.Create(p1).Error; err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if p1.ID == 0 {
		t.Fatalf("expected store-assigned id, got 0")
	}

	p2 := &Product{ProductNumber: "NK-001", Category: CategoryBangles, Price: 20}
	if err := db.Create(p2).Error; err == nil {
		t.Fatalf("expected unique index to reject duplicate product number")
	}
}

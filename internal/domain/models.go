// Package domain defines the persistence models for products, product
// images, and log entries. These types are mapped with GORM and form the
// core data layer of the catalog application.
package domain

import (
	"time"
)

// Product categories form a small closed set. Validation happens in the
// service layer; the column itself is free-form so the set can grow
// without a schema migration.
const (
	CategoryNecklaceSet = "necklace-set"
	CategoryBangles     = "bangles"
	CategoryEarrings    = "earrings"
	CategoryRings       = "rings"
	CategoryBracelets   = "bracelets"

	// CategoryAll is a sentinel accepted by the service layer meaning
	// "no category filter". It is never stored and never forwarded to
	// the category index.
	CategoryAll = "all"
)

// productCategories is the set of storable category values.
var productCategories = map[string]struct{}{
	CategoryNecklaceSet: {},
	CategoryBangles:     {},
	CategoryEarrings:    {},
	CategoryRings:       {},
	CategoryBracelets:   {},
}

// ValidCategory reports whether c is a storable product category.
// The "all" sentinel is NOT a valid stored category.
func ValidCategory(c string) bool {
	_, ok := productCategories[c]
	return ok
}

// Categories returns the closed set of storable category values.
func Categories() []string {
	return []string{
		CategoryNecklaceSet,
		CategoryBangles,
		CategoryEarrings,
		CategoryRings,
		CategoryBracelets,
	}
}

// Product represents a catalog item. Its images live in the images store
// joined by ProductID; the link is enforced entirely in application
// logic, never by the storage engine.
//
// Fields:
//   - ID: store-assigned auto-increment primary key.
//   - ProductNumber: human-facing identifier, unique across all products
//     (unique secondary index).
//   - Category: one of the closed category set; indexed for filtered reads.
//   - Price: non-negative decimal price.
//   - CreatedAt / UpdatedAt: stamped by the repository in UTC.
//   - Images: attached image payloads (data URIs); populated at read time,
//     not persisted on this row.
type Product struct {
	ID            uint      `json:"id"             gorm:"primaryKey;autoIncrement"`
	ProductNumber string    `json:"product_number" gorm:"type:varchar(64);not null;uniqueIndex:ux_products_number"`
	Category      string    `json:"category"       gorm:"type:varchar(32);not null;index:idx_products_category"`
	Price         float64   `json:"price"          gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Images holds the data-URI payloads of this product's image rows,
	// ordered by image id ascending (first image is the representative
	// image). Reconstructed by the repository on every read.
	Images []string `json:"images" gorm:"-"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ProductImage is an encoded image owned by a product. Its lifecycle is
// strictly subordinate to the owning product: rows are created alongside
// product creation/update and deleted when the product is deleted or its
// image set is replaced.
type ProductImage struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	ProductID uint      `json:"product_id" gorm:"not null;index:idx_images_product"`
	DataURI   string    `json:"data_uri"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ProductImage.
func (ProductImage) TableName() string { return "images" }

// Log levels form a closed enum.
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// ValidLogLevel reports whether l is one of the known log levels.
func ValidLogLevel(l string) bool {
	switch l {
	case LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	}
	return false
}

// LogEntry is an immutable audit record. It lives in its own database,
// fully independent of the catalog stores: no update operation exists,
// and a failed log write must never affect a catalog transaction.
//
// Fields:
//   - ID: store-assigned auto-increment primary key.
//   - Timestamp: time of the event (indexed for range queries).
//   - Level: info | warning | error.
//   - Category: free-form label, e.g. "Product" or "System".
//   - Message: human-readable summary.
//   - Details: optional auxiliary payload serialized to JSON text.
type LogEntry struct {
	ID        uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_logs_timestamp"`
	Level     string    `json:"level"     gorm:"type:varchar(16);not null;index:idx_logs_level;check:level IN ('info','warning','error')"`
	Category  string    `json:"category"  gorm:"type:varchar(64);not null;index:idx_logs_category"`
	Message   string    `json:"message"   gorm:"type:text;not null"`
	Details   string    `json:"details,omitempty" gorm:"type:text"`
}

// TableName returns the database table name for LogEntry.
func (LogEntry) TableName() string { return "logs" }

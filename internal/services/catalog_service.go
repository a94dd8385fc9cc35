// Package services – CatalogService
//
// This file implements the CatalogService, the façade over the product
// store. Every public method validates its input, delegates to the
// repository inside a single atomic transaction, and records an audit
// entry: info with a human-readable summary on success, error with the
// underlying failure otherwise. Failures are logged then rethrown
// unchanged, so callers always observe the original error while an audit
// trail is produced regardless of outcome.
//
// The audit path and the transactional path are fully independent: the
// AuditService swallows its own failures, so a broken log database can
// never roll back a catalog mutation.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/unicode/norm"

	"github.com/nezarts/jewelry-catalog/internal/domain"
	"github.com/nezarts/jewelry-catalog/internal/metrics"
	"github.com/nezarts/jewelry-catalog/internal/repo"
)

// auditCategoryProduct labels every product-related audit entry.
const auditCategoryProduct = "Product"

// CreateProductInput carries the caller-supplied fields for a create.
type CreateProductInput struct {
	ProductNumber string
	Category      string
	Price         float64
	Images        []string
}

// UpdateProductInput carries the caller-supplied fields for an update.
// The product number is immutable and therefore absent; Images is a full
// replacement of the image set.
type UpdateProductInput struct {
	Category string
	Price    float64
	Images   []string
}

// CatalogService coordinates product persistence with audit logging. It
// owns no persistent state itself: the catalog database belongs to the
// repository functions it calls, and the log database belongs to Audit.
type CatalogService struct {
	// DB is the GORM handle for the catalog database.
	DB *gorm.DB
	// Audit receives one entry per operation. May be nil in tests; all
	// audit calls are nil-safe.
	Audit *AuditService
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB, audit *AuditService) *CatalogService {
	return &CatalogService{DB: db, Audit: audit}
}

// CreateProduct validates the input and inserts the product together with
// its image rows in one atomic transaction. The product number is
// trimmed and NFC-normalized before the uniqueness check so two visually
// identical numbers cannot coexist under different byte encodings.
//
// Errors: ErrEmptyProductNumber, ErrInvalidCategory, ErrNegativePrice for
// validation; ErrDuplicateProductNumber when the unique index rejects the
// insert; the raw DB error for anything else.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "CreateProduct",
		trace.WithAttributes(
			attribute.String("product.number", in.ProductNumber),
			attribute.String("product.category", in.Category),
		),
	)
	defer span.End()

	opID := uuid.NewString()
	start := time.Now()

	number := norm.NFC.String(strings.TrimSpace(in.ProductNumber))
	if err := validateCreate(number, in.Category, in.Price); err != nil {
		metrics.CatalogOp("create", err, time.Since(start))
		s.auditError(ctx, opID, fmt.Sprintf("Failed to create product #%s", number), err)
		return nil, err
	}

	p, err := repo.CreateProduct(ctx, s.DB, number, in.Category, in.Price, in.Images)
	if err != nil {
		if isDuplicate(err) {
			err = ErrDuplicateProductNumber
		}
		metrics.CatalogOp("create", err, time.Since(start))
		s.auditError(ctx, opID, fmt.Sprintf("Failed to create product #%s", number), err)
		return nil, err
	}

	metrics.CatalogOp("create", nil, time.Since(start))
	s.auditInfo(ctx, fmt.Sprintf("Created new product #%s", p.ProductNumber), map[string]any{
		"op_id":       opID,
		"product_id":  p.ID,
		"category":    p.Category,
		"price":       p.Price,
		"image_count": len(p.Images),
	})
	return p, nil
}

// GetAllProducts returns every product with its images attached.
func (s *CatalogService) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "GetAllProducts")
	defer span.End()

	opID := uuid.NewString()
	start := time.Now()

	products, err := repo.ListProducts(ctx, s.DB)
	metrics.CatalogOp("get_all", err, time.Since(start))
	if err != nil {
		s.auditError(ctx, opID, "Failed to fetch all products", err)
		return nil, err
	}

	s.auditInfo(ctx, fmt.Sprintf("Retrieved all products (%d total)", len(products)), map[string]any{
		"op_id": opID,
		"count": len(products),
	})
	return products, nil
}

// GetProductsByCategory returns the products in the given category with
// their images attached. The sentinel category "all" is an explicit
// synonym for "fetch everything" and bypasses the category index.
func (s *CatalogService) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == domain.CategoryAll {
		return s.GetAllProducts(ctx)
	}

	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "GetProductsByCategory",
		trace.WithAttributes(attribute.String("product.category", category)),
	)
	defer span.End()

	opID := uuid.NewString()
	start := time.Now()

	products, err := repo.ListProductsByCategory(ctx, s.DB, category)
	metrics.CatalogOp("get_by_category", err, time.Since(start))
	if err != nil {
		s.auditError(ctx, opID, fmt.Sprintf("Failed to fetch products for category: %s", category), err)
		return nil, err
	}

	s.auditInfo(ctx, fmt.Sprintf("Retrieved %d products from category: %s", len(products), category), map[string]any{
		"op_id":    opID,
		"category": category,
		"count":    len(products),
	})
	return products, nil
}

// UpdateProduct patches category and price and replaces the image set in
// one atomic transaction, preserving id, product number, and CreatedAt.
//
// Errors: ErrInvalidCategory, ErrNegativePrice for validation;
// ErrProductNotFound when id does not exist; the raw DB error otherwise.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in UpdateProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "UpdateProduct",
		trace.WithAttributes(
			attribute.Int64("product.id", int64(id)),
			attribute.String("product.category", in.Category),
		),
	)
	defer span.End()

	opID := uuid.NewString()
	start := time.Now()

	if err := validateMutation(in.Category, in.Price); err != nil {
		metrics.CatalogOp("update", err, time.Since(start))
		s.auditError(ctx, opID, fmt.Sprintf("Failed to update product #%d", id), err)
		return nil, err
	}

	p, err := repo.UpdateProduct(ctx, s.DB, id, in.Category, in.Price, in.Images)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			err = ErrProductNotFound
		}
		metrics.CatalogOp("update", err, time.Since(start))
		s.auditError(ctx, opID, fmt.Sprintf("Failed to update product #%d", id), err)
		return nil, err
	}

	metrics.CatalogOp("update", nil, time.Since(start))
	s.auditInfo(ctx, fmt.Sprintf("Updated product #%d", id), map[string]any{
		"op_id":       opID,
		"product_id":  id,
		"category":    p.Category,
		"price":       p.Price,
		"image_count": len(p.Images),
	})
	return p, nil
}

// DeleteProduct removes the product and cascades to its image rows in one
// atomic transaction. Like UpdateProduct it is strict about missing ids
// and returns ErrProductNotFound (see DESIGN.md).
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "DeleteProduct",
		trace.WithAttributes(attribute.Int64("product.id", int64(id))),
	)
	defer span.End()

	opID := uuid.NewString()
	start := time.Now()

	err := repo.DeleteProduct(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			err = ErrProductNotFound
		}
		metrics.CatalogOp("delete", err, time.Since(start))
		s.auditError(ctx, opID, fmt.Sprintf("Failed to delete product #%d", id), err)
		return err
	}

	metrics.CatalogOp("delete", nil, time.Since(start))
	s.auditInfo(ctx, fmt.Sprintf("Deleted product #%d", id), map[string]any{
		"op_id":      opID,
		"product_id": id,
	})
	return nil
}

// auditInfo writes a success entry; nil-safe when no AuditService is wired.
func (s *CatalogService) auditInfo(ctx context.Context, message string, details map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Append(ctx, domain.LogLevelInfo, auditCategoryProduct, message, details)
}

// auditError writes a failure entry carrying the underlying error text.
func (s *CatalogService) auditError(ctx context.Context, opID, message string, opErr error) {
	if s.Audit == nil {
		return
	}
	s.Audit.Append(ctx, domain.LogLevelError, auditCategoryProduct, message, map[string]any{
		"op_id": opID,
		"error": opErr.Error(),
	})
}

func validateCreate(number, category string, price float64) error {
	if number == "" {
		return ErrEmptyProductNumber
	}
	return validateMutation(category, price)
}

func validateMutation(category string, price float64) error {
	if !domain.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// isDuplicate attempts to detect unique-constraint violations across
// drivers that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

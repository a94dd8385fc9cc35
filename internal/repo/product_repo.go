// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model and its subordinate image rows.
//
// All functions are context-aware and accept a *gorm.DB handle. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Every mutating function wraps its
// work in a single transaction spanning the products and images stores,
// so each public operation is atomic: either the whole set commits or
// none of it does.
//
// Error semantics:
//   - When a product is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (unique-constraint violations, missing tables, etc.),
//     the raw gorm error is propagated; the service layer maps it to
//     stable sentinels.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nezarts/jewelry-catalog/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateProduct inserts a new product row plus one image row per payload,
// all inside one transaction. CreatedAt and UpdatedAt are stamped with the
// same UTC instant. The returned product carries its image payload list.
//
// A duplicate product number surfaces as the driver's unique-constraint
// error; a failing image insert aborts the whole transaction, so no
// product row is visible afterwards.
func CreateProduct(ctx context.Context, db *gorm.DB, productNumber, category string, price float64, images []string) (*domain.Product, error) {
	now := time.Now().UTC()
	p := &domain.Product{
		ProductNumber: productNumber,
		Category:      category,
		Price:         price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for _, uri := range images {
			img := &domain.ProductImage{
				ProductID: p.ID,
				DataURI:   uri,
				CreatedAt: now,
			}
			if err := tx.Create(img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Images = append([]string(nil), images...)
	return p, nil
}

// ListProducts returns every product with its image payloads attached,
// ordered by id ascending.
func ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var out []domain.Product
	if err := db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	if err := attachImages(ctx, db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProductsByCategory returns the products in the given category with
// their image payloads attached, using the category index.
func ListProductsByCategory(ctx context.Context, db *gorm.DB, category string) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("category = ?", category).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if err := attachImages(ctx, db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct fetches a single product by id with its image payloads
// attached, or ErrNotFound if missing.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	single := []domain.Product{p}
	if err := attachImages(ctx, db, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// UpdateProduct patches category, price, and UpdatedAt on the product row
// (preserving id, product number, and CreatedAt) and replaces its entire
// image set with the provided payloads, all inside one transaction. This
// is a full replace, not a diff: callers that want to keep an existing
// image must resubmit its payload.
//
// Returns ErrNotFound when no product with id exists.
func UpdateProduct(ctx context.Context, db *gorm.DB, id uint, category string, price float64, images []string) (*domain.Product, error) {
	var p domain.Product
	now := time.Now().UTC()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}

		p.Category = category
		p.Price = price
		p.UpdatedAt = now
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]any{
			"category":   category,
			"price":      price,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		for _, uri := range images {
			img := &domain.ProductImage{
				ProductID: id,
				DataURI:   uri,
				CreatedAt: now,
			}
			if err := tx.Create(img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Images = append([]string(nil), images...)
	return &p, nil
}

// DeleteProduct removes the product row and every image row referencing
// it inside one transaction (application-level cascade; the engine does
// not enforce the foreign key). Returns ErrNotFound when no product with
// id exists.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error
	})
}

// CountProducts returns the total number of product rows.
func CountProducts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, err
}

// attachImages populates the Images slice of each product from the images
// store via the product_id index, one query for the whole batch. Payloads
// are ordered by image id ascending so the first submitted image stays
// the representative one.
func attachImages(ctx context.Context, db *gorm.DB, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(products))
	for i := range products {
		products[i].Images = []string{}
		ids = append(ids, products[i].ID)
	}

	var rows []domain.ProductImage
	err := db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return err
	}

	byProduct := make(map[uint][]string, len(products))
	for _, img := range rows {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img.DataURI)
	}
	for i := range products {
		if imgs, ok := byProduct[products[i].ID]; ok {
			products[i].Images = imgs
		}
	}
	return nil
}

// Package services defines the business logic for the product catalog and
// the audit log. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages should be performed at the UI
// boundary.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrProductNotFound indicates that the requested product id does not
	// exist. Both Update and Delete return it (see DESIGN.md for the
	// consistency decision).
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProductNumber is returned when a create collides with
	// an existing product number on the unique index.
	ErrDuplicateProductNumber = errors.New("product number already exists")

	// ErrEmptyProductNumber is returned when a create carries a blank
	// product number.
	ErrEmptyProductNumber = errors.New("product number is empty")

	// ErrInvalidCategory is returned when a mutation names a category
	// outside the closed set.
	ErrInvalidCategory = errors.New("unknown product category")

	// ErrNegativePrice is returned when a mutation carries a price below
	// zero.
	ErrNegativePrice = errors.New("price must not be negative")
)

/**
 * @description
 * This file defines the `Repository` interface, the contract for all catalog data
 * access in the savings-service. The interface decouples the application layer
 * from the concrete collection implementation, making the write path easy to
 * exercise in tests.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: Catalog domain models.
 *
 * @notes
 * - Conflict and NotFound are sentinel errors so callers can branch with
 *   errors.Is while still receiving a message that names the offending key.
 */
package store

import (
	"context"
	"errors"

	"github.com/cajadigital/savings-service/internal/domain"
)

var (
	// ErrConflict indicates a create collided with an existing slug or type key.
	ErrConflict = errors.New("already exists")
	// ErrNotFound indicates the requested product or type key is absent.
	ErrNotFound = errors.New("not found")
)

// Repository defines the catalog collection operations. Products are never
// hard-deleted; product types are read-only after creation.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, slug string, update domain.ProductUpdate) (*domain.Product, error)

	ProductTypes(ctx context.Context) (map[string]domain.ProductType, error)
	CreateProductType(ctx context.Context, key string, pt domain.ProductType) error
}

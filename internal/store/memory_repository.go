/**
 * @description
 * In-memory implementation of the catalog Repository. The collections live for
 * the lifetime of the process, seeded once from the embedded dataset. All
 * mutation goes through this object and is serialized by a single mutex; write
 * volume is low (administrative calls only), so no finer-grained locking is
 * warranted.
 *
 * @notes
 * - Reads hand out copies so callers can never alias the collection's backing
 *   slices or map entries.
 */
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/cajadigital/savings-service/internal/domain"
)

// MemoryRepository is the single-writer in-memory catalog store.
type MemoryRepository struct {
	mu       sync.Mutex
	products []domain.Product
	types    map[string]domain.ProductType
}

// NewMemoryRepository creates a repository holding copies of the given seed
// collections.
func NewMemoryRepository(products []domain.Product, types map[string]domain.ProductType) *MemoryRepository {
	r := &MemoryRepository{
		products: make([]domain.Product, len(products)),
		types:    make(map[string]domain.ProductType, len(types)),
	}
	copy(r.products, products)
	for k, v := range types {
		r.types[k] = v
	}
	return r
}

// ListProducts returns a snapshot of every product in the catalog.
func (r *MemoryRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// FindProductBySlug returns the product with the given slug, or ErrNotFound.
func (r *MemoryRepository) FindProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].Slug == slug {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %q %w", slug, ErrNotFound)
}

// CreateProduct appends a new product, rejecting duplicate slugs with ErrConflict.
func (r *MemoryRepository) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].Slug == product.Slug {
			return nil, fmt.Errorf("product %q %w", product.Slug, ErrConflict)
		}
	}
	r.products = append(r.products, product)
	created := product
	return &created, nil
}

// UpdateProduct applies a partial-field update to the product with the given
// slug, returning ErrNotFound when absent. Nil fields are left untouched.
func (r *MemoryRepository) UpdateProduct(ctx context.Context, slug string, update domain.ProductUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].Slug != slug {
			continue
		}
		applyProductUpdate(&r.products[i], update)
		p := r.products[i]
		return &p, nil
	}
	return nil, fmt.Errorf("product %q %w", slug, ErrNotFound)
}

// ProductTypes returns a snapshot of the category metadata map.
func (r *MemoryRepository) ProductTypes(ctx context.Context) (map[string]domain.ProductType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]domain.ProductType, len(r.types))
	for k, v := range r.types {
		out[k] = v
	}
	return out, nil
}

// CreateProductType registers category metadata under a new key, rejecting
// duplicates with ErrConflict. Types are read-only after creation.
func (r *MemoryRepository) CreateProductType(ctx context.Context, key string, pt domain.ProductType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[key]; exists {
		return fmt.Errorf("product type %q %w", key, ErrConflict)
	}
	r.types[key] = pt
	return nil
}

func applyProductUpdate(p *domain.Product, u domain.ProductUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.TargetAudience != nil {
		p.TargetAudience = *u.TargetAudience
	}
	if u.AnnualRate != nil {
		p.AnnualRate = *u.AnnualRate
	}
	if u.MinOpeningAmount != nil {
		p.MinOpeningAmount = *u.MinOpeningAmount
	}
	if u.RecommendedMonthlyContribution != nil {
		p.RecommendedMonthlyContribution = *u.RecommendedMonthlyContribution
	}
	if u.SuggestedTermMonths != nil {
		p.SuggestedTermMonths = *u.SuggestedTermMonths
	}
	if u.Liquidity != nil {
		p.Liquidity = *u.Liquidity
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
}

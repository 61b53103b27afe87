/**
 * @description
 * Loads the embedded seed dataset the in-memory catalog starts from. The JSON
 * files keep the same shape the catalog API serves, so the seed doubles as a
 * fixture for the read endpoints.
 */
package store

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/cajadigital/savings-service/internal/domain"
)

//go:embed data/products.json
var seedProducts []byte

//go:embed data/product-types.json
var seedProductTypes []byte

// NewSeededRepository builds a MemoryRepository from the embedded dataset.
func NewSeededRepository() (*MemoryRepository, error) {
	var products []domain.Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return nil, fmt.Errorf("parse embedded products seed: %w", err)
	}

	var types map[string]domain.ProductType
	if err := json.Unmarshal(seedProductTypes, &types); err != nil {
		return nil, fmt.Errorf("parse embedded product types seed: %w", err)
	}

	return NewMemoryRepository(products, types), nil
}

/**
 * @description
 * This package provides a read-through client for the catalog API: the product
 * and product-type collections consumed by the simulator and onboarding flows.
 * Responses are cached under the invalidation tags "products" and
 * "product-types" with a bounded staleness, so the revalidation endpoint can
 * refresh them selectively without a full cache flush.
 *
 * @dependencies
 * - context, encoding/json, fmt, net/http, time: Standard Go libraries.
 * - internal/cache: the tag-based cache layer.
 * - internal/domain: catalog models.
 *
 * @notes
 * - Cache faults degrade to an origin fetch; they are logged, never returned.
 */
package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cajadigital/savings-service/internal/cache"
	"github.com/cajadigital/savings-service/internal/domain"
)

// ErrNotFound is returned when a slug does not resolve to a product.
var ErrNotFound = errors.New("product not found")

// DefaultTTL is the maximum staleness of cached catalog reads.
const DefaultTTL = 3600 * time.Second

// Cache tags and keys.
const (
	TagProducts     = "products"
	TagProductTypes = "product-types"

	keyProducts     = "products:all"
	keyProductTypes = "product-types:all"
)

// Client is a read-through catalog API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	cache cache.TagCache
	ttl   time.Duration
}

// NewClient creates a catalog client caching through the given TagCache.
func NewClient(baseURL string, tagCache cache.TagCache, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: tagCache,
		ttl:   ttl,
	}
}

// GetProducts returns the full product collection, cached under "products".
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if c.cacheGet(ctx, keyProducts, &products) {
		return products, nil
	}

	if err := c.fetchJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, keyProducts, TagProducts, products)
	return products, nil
}

// GetProductBySlug returns one product, or ErrNotFound. Lookups go through the
// cached collection; individual products are not cached separately.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	products, err := c.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Slug == slug {
			p := products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("slug %q: %w", slug, ErrNotFound)
}

// GetProductTypes returns the category metadata map, cached under
// "product-types".
func (c *Client) GetProductTypes(ctx context.Context) (map[string]domain.ProductType, error) {
	var types map[string]domain.ProductType
	if c.cacheGet(ctx, keyProductTypes, &types) {
		return types, nil
	}

	if err := c.fetchJSON(ctx, "/api/product-types", &types); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, keyProductTypes, TagProductTypes, types)
	return types, nil
}

// Invalidate drops the cached entries for a tag. The revalidation endpoint
// calls this when the catalog announces a write.
func (c *Client) Invalidate(ctx context.Context, tag string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Invalidate(ctx, tag)
}

func (c *Client) fetchJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request %s returned %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	hit, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("level=warn component=catalogclient msg=\"cache read failed; fetching origin\" key=%s err=%v", key, err)
		return false
	}
	return hit
}

func (c *Client) cacheSet(ctx context.Context, key, tag string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, tag, value, c.ttl); err != nil {
		log.Printf("level=warn component=catalogclient msg=\"cache write failed\" key=%s err=%v", key, err)
	}
}

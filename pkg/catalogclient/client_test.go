package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cajadigital/savings-service/internal/cache"
	"github.com/cajadigital/savings-service/internal/domain"
)

// catalogOrigin is a fake catalog API counting how many times each collection
// is fetched.
type catalogOrigin struct {
	products    []domain.Product
	types       map[string]domain.ProductType
	productHits int
	typeHits    int
	server      *httptest.Server
}

func newCatalogOrigin(t *testing.T) *catalogOrigin {
	t.Helper()
	origin := &catalogOrigin{
		products: []domain.Product{
			{ID: "p1", Slug: "ahorro-meta", Name: "Cuenta Ahorro Meta", Type: "goal", AnnualRate: 8.5},
			{ID: "p2", Slug: "ahorro-vivienda", Name: "Ahorro Programado Vivienda", Type: "housing", AnnualRate: 10.2},
		},
		types: map[string]domain.ProductType{
			"goal": {Label: "Ahorro por metas"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		origin.productHits++
		json.NewEncoder(w).Encode(origin.products)
	})
	mux.HandleFunc("/api/product-types", func(w http.ResponseWriter, r *http.Request) {
		origin.typeHits++
		json.NewEncoder(w).Encode(origin.types)
	})

	origin.server = httptest.NewServer(mux)
	t.Cleanup(origin.server.Close)
	return origin
}

func TestGetProductsReadsThroughCache(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	first, err := client.GetProducts(ctx)
	if err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 products, got %d", len(first))
	}

	for i := 0; i < 5; i++ {
		if _, err := client.GetProducts(ctx); err != nil {
			t.Fatalf("expected cached read to succeed, got %v", err)
		}
	}
	if origin.productHits != 1 {
		t.Fatalf("expected a single origin fetch, got %d", origin.productHits)
	}
}

func TestGetProductBySlug(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	product, err := client.GetProductBySlug(ctx, "ahorro-vivienda")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if product.Name != "Ahorro Programado Vivienda" {
		t.Fatalf("expected the housing product, got %q", product.Name)
	}

	_, err = client.GetProductBySlug(ctx, "no-existe")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Slug lookups share the cached collection.
	if origin.productHits != 1 {
		t.Fatalf("expected a single origin fetch, got %d", origin.productHits)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	if _, err := client.GetProducts(ctx); err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}

	// The origin changes, then announces the change through invalidation.
	rate := 13.5
	origin.products[0].AnnualRate = rate
	if err := client.Invalidate(ctx, TagProducts); err != nil {
		t.Fatalf("expected invalidate to succeed, got %v", err)
	}

	refreshed, err := client.GetProducts(ctx)
	if err != nil {
		t.Fatalf("expected refetch to succeed, got %v", err)
	}
	if refreshed[0].AnnualRate != rate {
		t.Fatalf("expected refreshed rate %f, got %f", rate, refreshed[0].AnnualRate)
	}
	if origin.productHits != 2 {
		t.Fatalf("expected a second origin fetch after invalidation, got %d", origin.productHits)
	}
}

func TestInvalidateIsTagScoped(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	client.GetProducts(ctx)
	client.GetProductTypes(ctx)

	client.Invalidate(ctx, TagProducts)

	client.GetProducts(ctx)
	client.GetProductTypes(ctx)

	if origin.productHits != 2 {
		t.Fatalf("expected products refetched after invalidation, got %d hits", origin.productHits)
	}
	if origin.typeHits != 1 {
		t.Fatalf("expected product types still cached, got %d hits", origin.typeHits)
	}
}

func TestGetProductTypes(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, cache.NewMemory(), time.Minute)

	types, err := client.GetProductTypes(context.Background())
	if err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}
	if types["goal"].Label != "Ahorro por metas" {
		t.Fatalf("expected goal metadata, got %+v", types)
	}
}

func TestNilCacheDegradesToOrigin(t *testing.T) {
	origin := newCatalogOrigin(t)
	client := NewClient(origin.server.URL, nil, time.Minute)
	ctx := context.Background()

	client.GetProducts(ctx)
	client.GetProducts(ctx)

	if origin.productHits != 2 {
		t.Fatalf("expected every read to hit origin without a cache, got %d", origin.productHits)
	}
	if err := client.Invalidate(ctx, TagProducts); err != nil {
		t.Fatalf("expected nil-cache invalidate to be a no-op, got %v", err)
	}
}

func TestOriginErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, cache.NewMemory(), time.Minute)
	if _, err := client.GetProducts(context.Background()); err == nil {
		t.Fatal("expected origin failure to surface")
	}
}

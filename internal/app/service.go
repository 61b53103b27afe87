/**
 * @description
 * The catalog application service: the write path administrative callers use
 * to create and update products and product types, plus the read operations
 * the API serves. After every successful write it fans out best-effort change
 * notifications — the frontend revalidation webhook and, when a broker is
 * configured, a catalog event — without ever letting their failure reach the
 * write.
 *
 * @dependencies
 * - github.com/google/uuid: ids for products created without one.
 * - internal/domain, internal/store, pkg/rabbitmq, pkg/revalidate.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cajadigital/savings-service/internal/domain"
	"github.com/cajadigital/savings-service/internal/store"
	"github.com/cajadigital/savings-service/pkg/rabbitmq"
	"github.com/cajadigital/savings-service/pkg/revalidate"
)

// ErrInvalidPayload marks a write rejected before reaching the repository.
var ErrInvalidPayload = errors.New("invalid payload")

// catalogEventExchange is the topic exchange catalog-change events publish to.
const catalogEventExchange = "savings.events"

// Service wires the catalog repository to its change notifiers.
type Service struct {
	repo     store.Repository
	notifier revalidate.Notifier
	events   *rabbitmq.EventProducer
}

// NewService creates the catalog service. events may be nil when no broker is
// configured.
func NewService(repo store.Repository, notifier revalidate.Notifier, events *rabbitmq.EventProducer) *Service {
	if notifier == nil {
		notifier = revalidate.Noop{}
	}
	return &Service{repo: repo, notifier: notifier, events: events}
}

// Products returns the full catalog.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// ProductBySlug returns one product, or a store.ErrNotFound-wrapped error.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.FindProductBySlug(ctx, slug)
}

// ProductTypes returns the category metadata map.
func (s *Service) ProductTypes(ctx context.Context) (map[string]domain.ProductType, error) {
	return s.repo.ProductTypes(ctx)
}

// ThemeForProduct resolves the display theme for the product with the given
// slug, joining its category against the live metadata map.
func (s *Service) ThemeForProduct(ctx context.Context, slug string) (*domain.ProductTheme, error) {
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	types, err := s.repo.ProductTypes(ctx)
	if err != nil {
		return nil, err
	}
	theme := ResolveProductTheme(product.Type, types)
	return &theme, nil
}

// CreateProduct validates and stores a new product, then announces the change.
// The repository rejects duplicate slugs with store.ErrConflict.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Slug = strings.TrimSpace(product.Slug)
	product.Name = strings.TrimSpace(product.Name)

	if product.Slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrInvalidPayload)
	}
	if product.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	if product.AnnualRate < 0 {
		return nil, fmt.Errorf("%w: annualRate must be >= 0", ErrInvalidPayload)
	}
	if product.MinOpeningAmount < 0 {
		return nil, fmt.Errorf("%w: minOpeningAmount must be >= 0", ErrInvalidPayload)
	}
	if product.RecommendedMonthlyContribution < 0 {
		return nil, fmt.Errorf("%w: recommendedMonthlyContribution must be >= 0", ErrInvalidPayload)
	}
	if product.SuggestedTermMonths < 1 {
		return nil, fmt.Errorf("%w: suggestedTermMonths must be >= 1", ErrInvalidPayload)
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.LastUpdated == "" {
		product.LastUpdated = time.Now().Format("2006-01-02")
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	s.announce(revalidate.TagProducts)
	return created, nil
}

// UpdateProduct applies a partial update by slug, then announces the change.
// The repository rejects unknown slugs with store.ErrNotFound.
func (s *Service) UpdateProduct(ctx context.Context, slug string, update domain.ProductUpdate) (*domain.Product, error) {
	if update.AnnualRate != nil && *update.AnnualRate < 0 {
		return nil, fmt.Errorf("%w: annualRate must be >= 0", ErrInvalidPayload)
	}
	if update.MinOpeningAmount != nil && *update.MinOpeningAmount < 0 {
		return nil, fmt.Errorf("%w: minOpeningAmount must be >= 0", ErrInvalidPayload)
	}
	if update.RecommendedMonthlyContribution != nil && *update.RecommendedMonthlyContribution < 0 {
		return nil, fmt.Errorf("%w: recommendedMonthlyContribution must be >= 0", ErrInvalidPayload)
	}
	if update.SuggestedTermMonths != nil && *update.SuggestedTermMonths < 1 {
		return nil, fmt.Errorf("%w: suggestedTermMonths must be >= 1", ErrInvalidPayload)
	}

	updated, err := s.repo.UpdateProduct(ctx, slug, update)
	if err != nil {
		return nil, err
	}

	s.announce(revalidate.TagProducts)
	return updated, nil
}

// CreateProductType registers category metadata under a new key, then
// announces the change. Duplicate keys come back as store.ErrConflict.
func (s *Service) CreateProductType(ctx context.Context, key string, pt domain.ProductType) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: type key is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(pt.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidPayload)
	}

	if err := s.repo.CreateProductType(ctx, key, pt); err != nil {
		return err
	}

	s.announce(revalidate.TagProductTypes)
	return nil
}

// announce fires the change notifications for a tag in the background. The
// write has already committed; nothing here may fail it.
func (s *Service) announce(tag string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.notifier.Notify(ctx, tag)

		if err := s.events.Publish(ctx, catalogEventExchange, "catalog."+tag+".updated", map[string]string{
			"tag":       tag,
			"changedAt": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("level=warn component=catalog msg=\"event publish failed\" tag=%s err=%v", tag, err)
		}
	}()
}

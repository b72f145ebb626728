package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/bodega-pos/bodega-pos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ErrInvalidRestock indicates a non-positive restock quantity.
var ErrInvalidRestock = errors.New("catalog: restock units must be positive")

// Service coordinates catalog operations.
type Service struct {
	repo  Repository
	cache *Cache
	audit AuditPort
}

// NewService builds Service.
func NewService(repo Repository, cache *Cache, audit AuditPort) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

// List returns the store's products, served from cache when warm.
func (s *Service) List(ctx context.Context, storeID string) ([]Product, error) {
	if storeID == "" {
		return nil, errors.New("catalog: store id required")
	}
	key, err := s.cache.BuildKey(ctx, keyStoreListing(storeID))
	if err != nil {
		return nil, err
	}
	var products []Product
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListByStore(ctx, storeID)
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, ErrProductNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if product.StoreID == "" {
		return Product{}, errors.New("catalog: store id required")
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Bump(ctx)
	return created, nil
}

// Update changes product master data. Stock is excluded: it only moves
// through sale deductions and Restock.
func (s *Service) Update(ctx context.Context, id string, product Product) error {
	if id == "" {
		return ErrProductNotFound
	}
	if err := s.validate(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return err
	}
	_ = s.cache.Bump(ctx)
	return nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Bump(ctx)
	return nil
}

// Restock adds units to a product's stock. Deductions happen only through
// sale commits, never here.
func (s *Service) Restock(ctx context.Context, id string, units int, actorID string) (Product, error) {
	if units <= 0 {
		return Product{}, ErrInvalidRestock
	}
	product, err := s.repo.AddStock(ctx, id, units)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Bump(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			StoreID:  product.StoreID,
			Action:   "catalog:restock",
			Entity:   "product",
			EntityID: product.ID,
			Meta: map[string]any{
				"units":     units,
				"new_stock": product.Stock,
			},
		})
	}
	return product, nil
}

// Warmup pre-populates the listing cache for a store.
func (s *Service) Warmup(ctx context.Context, storeID string) error {
	if _, err := s.List(ctx, storeID); err != nil {
		return fmt.Errorf("catalog: warmup %s: %w", storeID, err)
	}
	return nil
}

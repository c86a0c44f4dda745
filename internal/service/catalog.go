package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

// CatalogService handles product catalog reads and admin-side mutations.
// Reads go through an optional cache; mutations invalidate it.
type CatalogService struct {
	store  store.Store
	cache  store.ProductCache
	config *config.Config
}

// NewCatalogService creates a new catalog service. cache may be nil when
// caching is disabled.
func NewCatalogService(st store.Store, cache store.ProductCache, cfg *config.Config) *CatalogService {
	return &CatalogService{store: st, cache: cache, config: cfg}
}

func (s *CatalogService) cachingEnabled() bool {
	return s.config.Features.EnableProductCaching && s.cache != nil
}

// ListProducts returns catalog entries. The active-only listing is served
// from cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	if activeOnly && s.cachingEnabled() {
		if products, err := s.cache.GetList(ctx); err == nil && products != nil {
			return products, nil
		}
	}

	var products []*models.Product
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		products, err = sess.ListProducts(ctx, activeOnly)
		return err
	})
	if err != nil {
		return nil, err
	}

	if activeOnly && s.cachingEnabled() {
		if err := s.cache.SetList(ctx, products); err != nil {
			slog.Error("Failed to cache product list", "error", err)
		}
	}
	return products, nil
}

// GetProduct returns one catalog entry.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if s.cachingEnabled() {
		if product, err := s.cache.Get(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}

	var product *models.Product
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		product, err = sess.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cachingEnabled() {
		if err := s.cache.Set(ctx, product); err != nil {
			slog.Error("Failed to cache product", "product_id", id, "error", err)
		}
	}
	return product, nil
}

// CreateProduct adds a catalog entry.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.Price.Currency == "" {
		p.Price.Currency = models.DefaultCurrency
	}
	p.CreatedAt = time.Now()

	err := withSession(ctx, s.store, func(sess store.Session) error {
		return sess.InsertProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	slog.Info("Product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProduct applies a partial update to a catalog entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, update *models.ProductUpdate) (*models.Product, error) {
	var product *models.Product
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		product, err = sess.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		update.Apply(product)
		if err := validateProduct(product); err != nil {
			return err
		}
		return sess.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return product, nil
}

// DeleteProduct removes a catalog entry and any cart lines referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := withSession(ctx, s.store, func(sess store.Session) error {
		return sess.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	slog.Info("Product deleted", "product_id", id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id int64) {
	if !s.cachingEnabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Error("Failed to invalidate product cache", "product_id", id, "error", err)
	}
	if err := s.cache.InvalidateList(ctx); err != nil {
		slog.Error("Failed to invalidate product list cache", "error", err)
	}
}

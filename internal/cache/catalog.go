package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alextreichler/magicworld/internal/models"
)

const (
	productsPrefix = "catalog:products:"
	accountsPrefix = "catalog:accounts:"
)

// Source is where catalog data really comes from, normally *api.Client.
type Source interface {
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	ListAccounts(ctx context.Context) ([]models.PremiumAccount, error)
	GetAccount(ctx context.Context, slug string) (*models.PremiumAccount, error)
}

// Catalog is a read-through cache in front of a Source. Errors are never
// cached.
type Catalog struct {
	src   Source
	store Store
	ttl   time.Duration
}

// NewCatalog caches reads from src for ttl. A zero ttl disables caching.
func NewCatalog(src Source, store Store, ttl time.Duration) *Catalog {
	return &Catalog{src: src, store: store, ttl: ttl}
}

func cached[T any](ctx context.Context, c *Catalog, key string, fetch func() (T, error)) (T, error) {
	if c.ttl > 0 {
		if raw, ok := c.store.Get(ctx, key); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
			slog.Warn("Discarding undecodable cache entry", "key", key)
		}
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	if c.ttl > 0 {
		if raw, err := json.Marshal(v); err == nil {
			c.store.Set(ctx, key, raw, c.ttl)
		}
	}
	return v, nil
}

func (c *Catalog) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	return cached(ctx, c, productsPrefix+"list:"+category, func() ([]models.Product, error) {
		return c.src.ListProducts(ctx, category)
	})
}

func (c *Catalog) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	return cached(ctx, c, productsPrefix+"item:"+slug, func() (*models.Product, error) {
		return c.src.GetProduct(ctx, slug)
	})
}

func (c *Catalog) ListAccounts(ctx context.Context) ([]models.PremiumAccount, error) {
	return cached(ctx, c, accountsPrefix+"list", func() ([]models.PremiumAccount, error) {
		return c.src.ListAccounts(ctx)
	})
}

func (c *Catalog) GetAccount(ctx context.Context, slug string) (*models.PremiumAccount, error) {
	return cached(ctx, c, accountsPrefix+"item:"+slug, func() (*models.PremiumAccount, error) {
		return c.src.GetAccount(ctx, slug)
	})
}

func (c *Catalog) InvalidateProducts(ctx context.Context) { c.store.Invalidate(ctx, productsPrefix) }

func (c *Catalog) InvalidateAccounts(ctx context.Context) { c.store.Invalidate(ctx, accountsPrefix) }

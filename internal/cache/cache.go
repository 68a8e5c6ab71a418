// Package cache holds the local snapshot of the product catalog.
//
// The snapshot is only ever replaced wholesale by Reload, never patched in
// place after a mutation. Catalogs managed through the admin panel are small,
// so reloading everything keeps the snapshot trivially consistent with the
// service at the cost of one extra list call per mutation.
package cache

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/xenking/catalog-admin/internal/domain/product"
)

// reloadTimeout bounds a shared list request, which outlives the caller
// that started it.
const reloadTimeout = 30 * time.Second

// Lister fetches the full product list from the catalog service.
type Lister interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Cache is a sorted snapshot of the catalog shared by all sessions.
type Cache struct {
	lister Lister
	locale language.Tag
	now    func() time.Time
	group  singleflight.Group
	gen    atomic.Uint64

	mu       sync.RWMutex
	products []product.Product
	loadedAt time.Time
	stored   uint64 // generation of the request that produced products
}

type snapshot struct {
	products []product.Product
	loadedAt time.Time
}

// New returns an empty Cache that sorts by name using the given locale.
func New(lister Lister, locale language.Tag) *Cache {
	return &Cache{
		lister: lister,
		locale: locale,
		now:    time.Now,
	}
}

// Reload replaces the snapshot with a fresh list from the catalog and
// returns a copy of it along with the time it was loaded. When listing fails
// the previous snapshot is kept and the error is returned unchanged.
//
// Concurrent calls share one list request, but only with requests started
// since the last Invalidate. The shared request is not bound to any single
// caller: each caller stops waiting when its own ctx is done.
func (c *Cache) Reload(ctx context.Context) ([]product.Product, time.Time, error) {
	gen := c.gen.Load()
	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
		defer cancel()
		return c.reload(listCtx, gen)
	})

	select {
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, time.Time{}, res.Err
		}
		snap := res.Val.(snapshot)
		return slices.Clone(snap.products), snap.loadedAt, nil
	}
}

// Invalidate makes later Reload calls start a new list request instead of
// joining one already in flight. Call it once a mutation has been committed
// by the catalog.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
}

func (c *Cache) reload(ctx context.Context, gen uint64) (snapshot, error) {
	products, err := c.lister.List(ctx)
	if err != nil {
		return snapshot{}, err
	}
	products = dropUnidentified(ctx, products)
	product.SortByName(products, c.locale)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.stored {
		// A request started after a later mutation already stored its result.
		return snapshot{products: c.products, loadedAt: c.loadedAt}, nil
	}
	c.products = products
	c.loadedAt = c.now()
	c.stored = gen
	return snapshot{products: products, loadedAt: c.loadedAt}, nil
}

// Snapshot returns a copy of the current products.
func (c *Cache) Snapshot() []product.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

// Find returns the product with the given id from the snapshot.
func (c *Cache) Find(id string) (product.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := slices.IndexFunc(c.products, func(p product.Product) bool { return p.ID == id })
	if i < 0 {
		return product.Product{}, false
	}
	return c.products[i], true
}

// LoadedAt reports when the snapshot was last replaced. It is zero before
// the first successful Reload.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// dropUnidentified removes entries without an id; they cannot be edited or
// deleted through the API.
func dropUnidentified(ctx context.Context, products []product.Product) []product.Product {
	kept := products[:0]
	for _, p := range products {
		if p.ID == "" {
			zctx.From(ctx).Warn("Dropping product without id", zap.String("name", p.Name))
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

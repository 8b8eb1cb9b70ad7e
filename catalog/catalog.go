// Package catalog finds billing catalog entities in the collections written
// by the last catalog sync, so that form fields can be filled in from them.
package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/options"
)

var ErrNotFound = errors.New("catalog: not found")

// A Source holds the synced collections under the chargify.Key* keys.
type Source interface {
	Get(ctx context.Context, key string, v any) error
}

// Catalog is a form.Finder over a Source. Found entities are remembered for
// the configured TTL.
type Catalog struct {
	Source Source

	// Remote, if set, is asked for products that are not in Source, as
	// happens before the first sync.
	Remote *chargify.Client

	Logf func(format string, args ...any)

	memo memo
}

// New returns a Catalog reading from src that remembers up to size
// entities for ttl. A ttl of zero remembers them until Purge is called.
func New(src Source, size int, ttl time.Duration) *Catalog {
	return &Catalog{
		Source: src,
		memo:   memo{size: size, ttl: ttl},
	}
}

func (c *Catalog) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// Purge forgets all remembered entities. Call it after a sync.
func (c *Catalog) Purge() { c.memo.purge() }

// Find returns the entity of kind k referred to by ref. The id is tried
// before the handle. It returns ErrNotFound if neither matches.
func (c *Catalog) Find(ctx context.Context, k form.Kind, ref form.Ref) (form.Entity, error) {
	if ref.IsZero() {
		return nil, ErrNotFound
	}
	return c.memo.load(memoKey{k, ref}, func() (form.Entity, error) {
		return c.find(ctx, k, ref)
	})
}

func (c *Catalog) find(ctx context.Context, k form.Kind, ref form.Ref) (form.Entity, error) {
	switch k {
	case form.KindProduct:
		p, err := lookup(ctx, c.Source, chargify.KeyProductsAll, ref,
			func(p *chargify.Product) (int64, string) { return p.ID, p.Handle })
		if errors.Is(err, ErrNotFound) && c.Remote != nil {
			p, err = c.remoteProduct(ctx, ref)
		}
		if err != nil {
			return nil, err
		}
		return (*Product)(p), nil
	case form.KindProductPricePoint:
		pp, err := lookup(ctx, c.Source, chargify.KeyProductPricePointsAll, ref,
			func(pp *chargify.ProductPricePoint) (int64, string) { return pp.ID, pp.Handle })
		if err != nil {
			return nil, err
		}
		return (*ProductPricePoint)(pp), nil
	case form.KindComponent:
		cc, err := lookup(ctx, c.Source, chargify.KeyComponentsAll, ref,
			func(cc *chargify.Component) (int64, string) { return cc.ID, cc.Handle })
		if err != nil {
			return nil, err
		}
		return (*Component)(cc), nil
	case form.KindComponentPricePoint:
		cp, err := lookup(ctx, c.Source, chargify.KeyComponentPricePointsAll, ref,
			func(cp *chargify.ComponentPricePoint) (int64, string) { return cp.ID, cp.Handle })
		if err != nil {
			return nil, err
		}
		return (*ComponentPricePoint)(cp), nil
	}
	return nil, ErrNotFound
}

func (c *Catalog) remoteProduct(ctx context.Context, ref form.Ref) (*chargify.Product, error) {
	if n, ok := parseID(ref.ID); ok {
		p, err := c.Remote.Product(ctx, n)
		if err == nil && p.ID != 0 {
			return &p, nil
		}
		if err != nil && !chargify.IsNotFound(err) {
			return nil, err
		}
	}
	if ref.Handle != "" {
		p, err := c.Remote.ProductByHandle(ctx, ref.Handle)
		if err == nil && p.ID != 0 {
			return &p, nil
		}
		if err != nil && !chargify.IsNotFound(err) {
			return nil, err
		}
	}
	c.logf("catalog: product %+v not found remotely", ref)
	return nil, ErrNotFound
}

// lookup loads the collection under key and returns the element matching
// ref. A collection that was never synced is treated as empty.
func lookup[T any](ctx context.Context, src Source, key string, ref form.Ref, keys func(*T) (int64, string)) (*T, error) {
	var rows []T
	if src != nil {
		err := src.Get(ctx, key, &rows)
		if err != nil && !errors.Is(err, options.ErrNotFound) {
			return nil, err
		}
	}
	if n, ok := parseID(ref.ID); ok {
		for i := range rows {
			if rowID, _ := keys(&rows[i]); rowID == n {
				return &rows[i], nil
			}
		}
	}
	if ref.Handle != "" {
		for i := range rows {
			if _, h := keys(&rows[i]); h == ref.Handle {
				return &rows[i], nil
			}
		}
	}
	return nil, ErrNotFound
}

func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

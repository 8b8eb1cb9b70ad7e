package chargify

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Keys under which synced collections are stored.
const (
	KeyProductsAll             = "chargify_products_all"
	KeyComponentsAll           = "chargify_components_all"
	KeyProductPricePointsAll   = "chargify_product_price_points_all"
	KeyComponentPricePointsAll = "chargify_component_price_points_all"
)

// Store persists synced collections. Values are stored as JSON.
type Store interface {
	Put(ctx context.Context, key string, v any) error
}

// Catalog is a snapshot of the billing catalog.
type Catalog struct {
	Families             []ProductFamily
	Products             []Product
	ProductPricePoints   []ProductPricePoint
	Components           []Component
	ComponentPricePoints []ComponentPricePoint
}

const maxWorkers = 4

// SyncProducts fetches every product in every product family and stores them
// under KeyProductsAll. The first failed request aborts the sync and nothing
// is stored.
func SyncProducts(ctx context.Context, c *Client, s Store) ([]Product, error) {
	families, err := c.ProductFamilies(ctx)
	if err != nil {
		return nil, err
	}
	products, err := eachFamily(ctx, families, c.FamilyProducts)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, KeyProductsAll, products); err != nil {
		return nil, err
	}
	return products, nil
}

// SyncCatalog is like SyncProducts but also syncs components and the price
// points of every product and component.
func SyncCatalog(ctx context.Context, c *Client, s Store) (*Catalog, error) {
	families, err := c.ProductFamilies(ctx)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Families: families}
	if cat.Products, err = eachFamily(ctx, families, c.FamilyProducts); err != nil {
		return nil, err
	}
	if cat.Components, err = eachFamily(ctx, families, c.FamilyComponents); err != nil {
		return nil, err
	}
	cat.ProductPricePoints, err = fanOut(ctx, cat.Products, func(ctx context.Context, p Product) ([]ProductPricePoint, error) {
		return c.ProductPricePoints(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	cat.ComponentPricePoints, err = fanOut(ctx, cat.Components, func(ctx context.Context, cp Component) ([]ComponentPricePoint, error) {
		return c.ComponentPricePoints(ctx, cp.ID)
	})
	if err != nil {
		return nil, err
	}

	puts := []struct {
		key string
		v   any
	}{
		{KeyProductsAll, cat.Products},
		{KeyComponentsAll, cat.Components},
		{KeyProductPricePointsAll, cat.ProductPricePoints},
		{KeyComponentPricePointsAll, cat.ComponentPricePoints},
	}
	for _, p := range puts {
		if err := s.Put(ctx, p.key, p.v); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func eachFamily[T any](ctx context.Context, families []ProductFamily, f func(context.Context, int64) ([]T, error)) ([]T, error) {
	return fanOut(ctx, families, func(ctx context.Context, pf ProductFamily) ([]T, error) {
		return f(ctx, pf.ID)
	})
}

// fanOut calls f for each element of in, at most maxWorkers at a time, and
// returns the concatenated results in the order of in.
func fanOut[In, Out any](ctx context.Context, in []In, f func(context.Context, In) ([]Out, error)) ([]Out, error) {
	slots := make([][]Out, len(in))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, v := range in {
		i, v := i, v
		g.Go(func() error {
			out, err := f(ctx, v)
			if err != nil {
				return err
			}
			slots[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]Out, 0, len(in))
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}

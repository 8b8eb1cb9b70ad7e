package chargify

import (
	"context"
	"net/url"

	"kr.dev/errorfmt"
)

type ProductFamily struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID                         int64         `json:"id"`
	Name                       string        `json:"name"`
	Handle                     string        `json:"handle"`
	Description                string        `json:"description,omitempty"`
	PriceInCents               int64         `json:"price_in_cents"`
	Interval                   int           `json:"interval"`
	IntervalUnit               string        `json:"interval_unit"`
	ProductFamily              ProductFamily `json:"product_family"`
	DefaultProductPricePointID int64         `json:"default_product_price_point_id,omitempty"`
	ProductPricePointHandle    string        `json:"product_price_point_handle,omitempty"`
	ProductPricePointName      string        `json:"product_price_point_name,omitempty"`
}

type ProductPricePoint struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	PriceInCents int64  `json:"price_in_cents"`
	Interval     int    `json:"interval"`
	IntervalUnit string `json:"interval_unit"`
	ProductID    int64  `json:"product_id"`
	Default      bool   `json:"default"`
}

type Component struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Handle                string `json:"handle"`
	Kind                  string `json:"kind"`
	UnitName              string `json:"unit_name"`
	ProductFamilyID       int64  `json:"product_family_id"`
	DefaultPricePointID   int64  `json:"default_price_point_id,omitempty"`
	DefaultPricePointName string `json:"default_price_point_name,omitempty"`
}

type ComponentPricePoint struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Handle        string `json:"handle"`
	PricingScheme string `json:"pricing_scheme"`
	ComponentID   int64  `json:"component_id"`
	Default       bool   `json:"default"`
}

// ProductFamilies lists every product family in the site.
func (c *Client) ProductFamilies(ctx context.Context) (_ []ProductFamily, err error) {
	defer errorfmt.Handlef("chargify: ProductFamilies: %w", &err)
	var rows []struct {
		ProductFamily ProductFamily `json:"product_family"`
	}
	if err := c.Get(ctx, "/product_families.json", &rows); err != nil {
		return nil, err
	}
	out := make([]ProductFamily, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ProductFamily)
	}
	return out, nil
}

// FamilyProducts lists the products in the product family with id.
func (c *Client) FamilyProducts(ctx context.Context, familyID int64) (_ []Product, err error) {
	defer errorfmt.Handlef("chargify: FamilyProducts(%d): %w", familyID, &err)
	var rows []struct {
		Product Product `json:"product"`
	}
	if err := c.Get(ctx, idPath("/product_families/%d/products.json", familyID), &rows); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Product)
	}
	return out, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (_ Product, err error) {
	defer errorfmt.Handlef("chargify: Product(%d): %w", id, &err)
	var v struct {
		Product Product `json:"product"`
	}
	if err := c.Get(ctx, idPath("/products/%d.json", id), &v); err != nil {
		return Product{}, err
	}
	return v.Product, nil
}

// ProductByHandle fetches a single product by its API handle.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (_ Product, err error) {
	defer errorfmt.Handlef("chargify: ProductByHandle(%q): %w", handle, &err)
	var v struct {
		Product Product `json:"product"`
	}
	if err := c.Get(ctx, "/products/handle/"+url.PathEscape(handle)+".json", &v); err != nil {
		return Product{}, err
	}
	return v.Product, nil
}

// ProductPricePoints lists the price points of the product with id.
func (c *Client) ProductPricePoints(ctx context.Context, productID int64) (_ []ProductPricePoint, err error) {
	defer errorfmt.Handlef("chargify: ProductPricePoints(%d): %w", productID, &err)
	var v struct {
		PricePoints []ProductPricePoint `json:"price_points"`
	}
	if err := c.Get(ctx, idPath("/products/%d/price_points.json", productID), &v); err != nil {
		return nil, err
	}
	for i := range v.PricePoints {
		if v.PricePoints[i].ProductID == 0 {
			v.PricePoints[i].ProductID = productID
		}
	}
	return v.PricePoints, nil
}

// FamilyComponents lists the components in the product family with id.
func (c *Client) FamilyComponents(ctx context.Context, familyID int64) (_ []Component, err error) {
	defer errorfmt.Handlef("chargify: FamilyComponents(%d): %w", familyID, &err)
	var rows []struct {
		Component Component `json:"component"`
	}
	if err := c.Get(ctx, idPath("/product_families/%d/components.json", familyID), &rows); err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(rows))
	for _, r := range rows {
		if r.Component.ProductFamilyID == 0 {
			r.Component.ProductFamilyID = familyID
		}
		out = append(out, r.Component)
	}
	return out, nil
}

// ComponentPricePoints lists the price points of the component with id.
func (c *Client) ComponentPricePoints(ctx context.Context, componentID int64) (_ []ComponentPricePoint, err error) {
	defer errorfmt.Handlef("chargify: ComponentPricePoints(%d): %w", componentID, &err)
	var v struct {
		PricePoints []ComponentPricePoint `json:"price_points"`
	}
	if err := c.Get(ctx, idPath("/components/%d/price_points.json", componentID), &v); err != nil {
		return nil, err
	}
	for i := range v.PricePoints {
		if v.PricePoints[i].ComponentID == 0 {
			v.PricePoints[i].ComponentID = componentID
		}
	}
	return v.PricePoints, nil
}

package catalog

import (
	"strconv"

	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/form"
)

// Product, ProductPricePoint, Component, and ComponentPricePoint expose the
// form fields they can fill in.
type (
	Product             chargify.Product
	ProductPricePoint   chargify.ProductPricePoint
	Component           chargify.Component
	ComponentPricePoint chargify.ComponentPricePoint
)

func id(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func (p *Product) Attribute(key string) (string, bool) {
	switch key {
	case form.ProductID:
		return id(p.ID), true
	case form.ProductHandle:
		return p.Handle, true
	case form.ProductName:
		return p.Name, true
	case form.ProductDescription:
		return p.Description, true
	case form.ProductPriceInCents:
		return id(p.PriceInCents), true
	case form.ProductFamilyID:
		return id(p.ProductFamily.ID), true
	case form.ProductPricePointID:
		return id(p.DefaultProductPricePointID), true
	case form.ProductPricePointHandle:
		return p.ProductPricePointHandle, true
	case form.ProductPricePointName:
		return p.ProductPricePointName, true
	}
	return "", false
}

func (pp *ProductPricePoint) Attribute(key string) (string, bool) {
	switch key {
	case form.ProductPricePointID:
		return id(pp.ID), true
	case form.ProductPricePointHandle:
		return pp.Handle, true
	case form.ProductPricePointName:
		return pp.Name, true
	case form.ProductID:
		return id(pp.ProductID), true
	case form.ProductPriceInCents:
		return id(pp.PriceInCents), true
	}
	return "", false
}

func (c *Component) Attribute(key string) (string, bool) {
	switch key {
	case form.ComponentID:
		return id(c.ID), true
	case form.ComponentHandle:
		return c.Handle, true
	case form.ComponentName:
		return c.Name, true
	case form.ComponentUnitName:
		return c.UnitName, true
	case form.ComponentPricePointID:
		return id(c.DefaultPricePointID), true
	case form.ComponentPricePointName:
		return c.DefaultPricePointName, true
	case form.ProductFamilyID:
		return id(c.ProductFamilyID), true
	}
	return "", false
}

func (cp *ComponentPricePoint) Attribute(key string) (string, bool) {
	switch key {
	case form.ComponentPricePointID:
		return id(cp.ID), true
	case form.ComponentPricePointHandle:
		return cp.Handle, true
	case form.ComponentPricePointName:
		return cp.Name, true
	case form.ComponentID:
		return id(cp.ComponentID), true
	}
	return "", false
}

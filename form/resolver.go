package form

import (
	"context"
	"fmt"
)

// Kind is a kind of billing catalog entity.
type Kind int

const (
	KindProduct Kind = iota
	KindProductPricePoint
	KindComponent
	KindComponentPricePoint
)

func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindProductPricePoint:
		return "product price point"
	case KindComponent:
		return "component"
	case KindComponentPricePoint:
		return "component price point"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ref refers to a catalog entity by id or handle. When both are set, the id
// is tried first.
type Ref struct {
	ID     string
	Handle string
}

func (r Ref) IsZero() bool { return r.ID == "" && r.Handle == "" }

// An Entity is a catalog entity that exposes some form fields as
// attributes.
type Entity interface {
	// Attribute reports the value of the field with key and whether the
	// entity has that field at all.
	Attribute(key string) (string, bool)
}

// A Finder looks up catalog entities.
type Finder interface {
	Find(ctx context.Context, k Kind, ref Ref) (Entity, error)
}

// levels is the order in which the Resolver consults the catalog. Each
// level is found by its own id and handle fields.
var levels = []struct {
	kind      Kind
	idKey     string
	handleKey string
}{
	{KindProduct, ProductID, ProductHandle},
	{KindProductPricePoint, ProductPricePointID, ProductPricePointHandle},
	{KindComponent, ComponentID, ComponentHandle},
	{KindComponentPricePoint, ComponentPricePointID, ComponentPricePointHandle},
}

// A Resolver determines the default values of form fields.
type Resolver struct {
	Finder Finder // optional; if nil only submitted values are used
	Logf   func(format string, args ...any)
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// FieldDefault returns the value submitted for key in the POST body, or
// failing that in the query string. It returns "" if neither has one.
func FieldDefault(rc RequestContext, key string) string {
	if v := rc.Post.Get(key); v != "" {
		return v
	}
	return rc.Query.Get(key)
}

// Default returns the default value for the field with key, or "" if there
// is none. Submitted values win. Otherwise the product, product price point,
// component, and component price point referred to by the request are
// consulted in that order, and the first to expose a non-empty key wins.
//
// Catalog misses and errors are logged and otherwise ignored.
func (r *Resolver) Default(ctx context.Context, rc RequestContext, key string) string {
	if v := FieldDefault(rc, key); v != "" {
		return v
	}
	if r.Finder == nil {
		return ""
	}
	for _, l := range levels {
		ref := Ref{
			ID:     FieldDefault(rc, l.idKey),
			Handle: FieldDefault(rc, l.handleKey),
		}
		if ref.IsZero() {
			continue
		}
		e, err := r.Finder.Find(ctx, l.kind, ref)
		if err != nil {
			r.logf("form: default for %s: %s %+v: %v", key, l.kind, ref, err)
			continue
		}
		if e == nil {
			continue
		}
		if v, ok := e.Attribute(key); ok && v != "" {
			return v
		}
	}
	return ""
}

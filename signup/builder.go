// Package signup turns signup form submissions into Chargify subscriptions.
package signup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/values"
)

// DefaultNonceField is the form field carrying the anti-forgery token. The
// field name doubles as the token's action.
const DefaultNonceField = "nonce_CMB2phpsignup"

// SecurityError reports a submission that failed the anti-forgery check.
type SecurityError struct {
	Err error
}

func (e *SecurityError) Error() string { return "signup: security check failed: " + e.Err.Error() }
func (e *SecurityError) Unwrap() error { return e.Err }

// ValidationError reports a request that could not be assembled.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("signup: invalid %s: %v", e.Field, e.Err)
}
func (e *ValidationError) Unwrap() error { return e.Err }

// A TokenVerifier checks anti-forgery tokens.
type TokenVerifier interface {
	Verify(token, action, session string) error
}

// Hooks let the site adjust what a Builder produces. Any may be nil.
type Hooks struct {
	// DefaultProduct returns the product handle to use when the request
	// named none. It is passed the empty handle.
	DefaultProduct func(handle string) string

	// Metafields returns metafields to attach to every subscription, or
	// nil for none.
	Metafields func() any
}

// A Builder builds subscription requests from signup form submissions. It
// performs no I/O.
type Builder struct {
	Fields     []form.Field // nil means form.Signup
	Verifier   TokenVerifier
	NonceField string // empty means DefaultNonceField
	Hooks      Hooks
	Now        func() time.Time // nil means time.Now
}

func (b *Builder) fields() []form.Field {
	if b.Fields == nil {
		return form.Signup
	}
	return b.Fields
}

func (b *Builder) nonceField() string {
	return values.Coalesce(b.NonceField, DefaultNonceField)
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Build builds the subscription request submitted in rc. It reports false,
// with a nil error, if there was nothing to submit. A submission without a
// valid token for rc.Session fails with a *SecurityError before anything
// else is looked at.
func (b *Builder) Build(rc form.RequestContext) (Submission, bool, error) {
	if len(rc.Post) == 0 {
		return Submission{}, false, nil
	}
	if err := b.verify(rc); err != nil {
		return Submission{}, false, &SecurityError{Err: err}
	}

	v := form.Sanitize(b.fields(), rc.Post)
	if v.Len() == 0 {
		return Submission{}, false, nil
	}

	sub := Subscription{
		ProductHandle:           b.productHandle(rc, v),
		ProductID:               values.Ptr(v.Truthy(form.ProductID)),
		ProductPricePointHandle: values.Ptr(v.Truthy(form.ProductPricePointHandle)),
		ProductPricePointID:     values.Ptr(v.Truthy(form.ProductPricePointID)),
		CouponCode:              values.Ptr(v.Truthy(form.CouponCode)),
		CustomerAttributes: CustomerAttributes{
			FirstName:    v.Get(form.FirstName),
			LastName:     v.Get(form.LastName),
			Email:        v.Get(form.EmailAddress),
			CCEmails:     values.Ptr(v.Get(form.CCEmails)),
			Organization: values.Ptr(v.Get(form.Organisation)),
			Reference:    values.Coalesce(v.Get(form.BillingReference), strconv.FormatInt(b.now().Unix(), 10)),
			Address:      values.Ptr(v.Get(form.Address1)),
			Address2:     values.Ptr(v.Get(form.Address2)),
			City:         values.Ptr(v.Get(form.City)),
			State:        values.Ptr(v.Get(form.State)),
			Zip:          values.Ptr(v.Get(form.Zip)),
			Country:      values.Ptr(v.Get(form.Country)),
			Phone:        values.Ptr(v.Get(form.Phone)),
			Verified:     v.Bool(form.Verified),
			TaxExempt:    v.Bool(form.TaxExempt),
			VATNumber:    values.Ptr(v.Get(form.VATNumber)),
		},
	}

	cc := &CreditCardAttributes{
		FirstName:       values.Ptr(v.Get(form.BillingFirstName)),
		LastName:        values.Ptr(v.Get(form.BillingLastName)),
		FullNumber:      values.Ptr(v.Get(form.CardNumber)),
		ExpirationMonth: values.Ptr(v.Get(form.ExpiryMonth)),
		ExpirationYear:  values.Ptr(v.Get(form.ExpiryYear)),
		BillingAddress:  values.Ptr(v.Get(form.BillingAddress1)),
		BillingAddress2: values.Ptr(v.Get(form.BillingAddress2)),
		BillingCity:     values.Ptr(v.Get(form.BillingCity)),
		BillingState:    values.Ptr(v.Get(form.BillingState)),
		BillingZip:      values.Ptr(v.Get(form.BillingZip)),
		BillingCountry:  values.Ptr(v.Get(form.BillingCountry)),
	}
	if !cc.isZero() {
		sub.CreditCardAttributes = cc
	}

	if id := v.Truthy(form.ComponentID); id != "" {
		sub.Components = &Components{
			ComponentID:               id,
			PricePointID:              values.Ptr(v.Get(form.ComponentPricePointID)),
			ComponentPricePointHandle: values.Ptr(v.Get(form.ComponentPricePointHandle)),
			AllocatedQuantity:         values.Ptr(v.Get(form.ComponentQuantity)),
		}
	}

	if b.Hooks.Metafields != nil {
		if m := b.Hooks.Metafields(); m != nil {
			if _, err := json.Marshal(m); err != nil {
				return Submission{}, false, &ValidationError{Field: "metafields", Err: err}
			}
			sub.Metafields = m
		}
	}

	return Submission{
		Request: Request{Subscription: sub},
		Credentials: Credentials{
			Username: v.Get(form.Username),
			Password: v.Get(form.UserPass),
		},
	}, true, nil
}

var errNoVerifier = errors.New("no token verifier")

func (b *Builder) verify(rc form.RequestContext) error {
	field := b.nonceField()
	for _, key := range []string{form.SubmitKey, form.ObjectIDKey, field} {
		if _, ok := rc.Post[key]; !ok {
			return fmt.Errorf("missing %s", key)
		}
	}
	if b.Verifier == nil {
		return errNoVerifier
	}
	return b.Verifier.Verify(rc.Post.Get(field), field, rc.Session)
}

// productHandle returns the submitted product handle, or else the one in
// the query string, or else the DefaultProduct hook's. A query
// product_handle is itself sent as the handle; it does not merely suppress
// the hook.
func (b *Builder) productHandle(rc form.RequestContext, v form.Values) string {
	if h := v.Get(form.ProductHandle); h != "" {
		return h
	}
	if h := form.SanitizeText(rc.Query.Get("product_handle")); h != "" {
		return h
	}
	if b.Hooks.DefaultProduct != nil {
		return b.Hooks.DefaultProduct("")
	}
	return ""
}

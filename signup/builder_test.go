package signup

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/kr/pretty"
	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/nonce"
	"kr.dev/diff"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{
		Verifier: nonce.New(testKey, 0),
		Now:      func() time.Time { return time.Unix(1600000000, 0) },
	}
}

// submitted returns a request context for session "sess" whose POST holds
// a valid token and the given key/value pairs.
func submitted(t *testing.T, kv ...string) form.RequestContext {
	t.Helper()
	tok, err := nonce.New(testKey, 0).Create(DefaultNonceField, "sess")
	if err != nil {
		t.Fatal(err)
	}
	post := url.Values{
		form.SubmitKey:    {"Sign up"},
		form.ObjectIDKey:  {ObjectID},
		DefaultNonceField: {tok},
	}
	for i := 0; i+1 < len(kv); i += 2 {
		post.Set(kv[i], kv[i+1])
	}
	return form.RequestContext{Post: post, Query: url.Values{}, Session: "sess"}
}

func build(t *testing.T, b *Builder, rc form.RequestContext) Submission {
	t.Helper()
	sub, ok, err := b.Build(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Build reported nothing to submit")
	}
	return sub
}

// generic decodes the JSON encoding of v.
func generic(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuildMinimal(t *testing.T) {
	rc := submitted(t,
		form.FirstName, "Jane",
		form.LastName, "Doe",
		form.EmailAddress, "jane@x.com",
	)
	sub := build(t, newBuilder(t), rc)
	got := generic(t, sub.Request)
	t.Logf("request: %# v", pretty.Formatter(got))

	diff.Test(t, t.Errorf, got, map[string]any{
		"subscription": map[string]any{
			"product_handle": "",
			"customer_attributes": map[string]any{
				"first_name": "Jane",
				"last_name":  "Doe",
				"email":      "jane@x.com",
				"reference":  "1600000000",
				"verified":   false,
				"tax_exempt": false,
			},
		},
	})
}

func TestBuildComponent(t *testing.T) {
	rc := submitted(t,
		form.FirstName, "Jane",
		form.LastName, "Doe",
		form.EmailAddress, "jane@x.com",
		form.ComponentID, "42",
	)
	sub := build(t, newBuilder(t), rc)
	got := generic(t, sub.Request)["subscription"].(map[string]any)

	comp, ok := got["components"].(map[string]any)
	if !ok {
		t.Fatalf("components = %v; want an object", got["components"])
	}
	diff.Test(t, t.Errorf, comp, map[string]any{"component_id": "42"})
	if v := comp["price_point_id"]; v != nil {
		t.Errorf("price_point_id = %v; want null", v)
	}

	rc.Post.Set(form.ComponentPricePointID, "7")
	rc.Post.Set(form.ComponentPricePointHandle, "seats-std")
	rc.Post.Set(form.ComponentQuantity, "3")
	sub = build(t, newBuilder(t), rc)
	got = generic(t, sub.Request)["subscription"].(map[string]any)
	diff.Test(t, t.Errorf, got["components"], map[string]any{
		"component_id":                 "42",
		"price_point_id":               "7",
		"component_price_point_handle": "seats-std",
		"allocated_quantity":           "3",
	})
}

func TestBuildOmitsAbsentAndFalsy(t *testing.T) {
	rc := submitted(t,
		form.FirstName, "Jane",
		form.CouponCode, "",
		form.ProductID, "0",
		form.ProductPricePointID, "0",
		form.ComponentID, "0",
		form.Organisation, "   ",
		form.TaxExempt, "0",
	)
	sub := build(t, newBuilder(t), rc)
	got := generic(t, sub.Request)["subscription"].(map[string]any)
	for _, key := range []string{
		"coupon_code",
		"product_id",
		"product_price_point_id",
		"product_price_point_handle",
		"components",
		"credit_card_attributes",
		"metafields",
	} {
		if _, ok := got[key]; ok {
			t.Errorf("subscription has %q", key)
		}
	}
	cust := got["customer_attributes"].(map[string]any)
	if _, ok := cust["organization"]; ok {
		t.Error("customer_attributes has organization")
	}
	diff.Test(t, t.Errorf, cust["tax_exempt"], false)
}

func TestBuildKeepsWordLikeValues(t *testing.T) {
	for _, code := range []string{"OFF", "off", "false", "SAVE10"} {
		rc := submitted(t,
			form.FirstName, "Jane",
			form.CouponCode, code,
			form.ProductPricePointHandle, code,
			form.ComponentID, code,
		)
		sub := build(t, newBuilder(t), rc).Request.Subscription
		if sub.CouponCode == nil || *sub.CouponCode != code {
			t.Errorf("coupon_code for %q = %v; want %q", code, sub.CouponCode, code)
		}
		if sub.ProductPricePointHandle == nil || *sub.ProductPricePointHandle != code {
			t.Errorf("product_price_point_handle for %q = %v; want %q", code, sub.ProductPricePointHandle, code)
		}
		if sub.Components == nil || sub.Components.ComponentID != code {
			t.Errorf("components for %q = %+v; want component_id %q", code, sub.Components, code)
		}
	}
}

func TestBuildCreditCard(t *testing.T) {
	rc := submitted(t,
		form.FirstName, "Jane",
		form.ExpiryMonth, "12",
	)
	sub := build(t, newBuilder(t), rc)
	diff.Test(t, t.Errorf, sub.Request.Subscription.CreditCardAttributes, &CreditCardAttributes{
		ExpirationMonth: ptr("12"),
	})
}

func TestBuildProductHandle(t *testing.T) {
	var hookCalls []string
	b := newBuilder(t)
	b.Hooks.DefaultProduct = func(h string) string {
		hookCalls = append(hookCalls, h)
		return "default-plan"
	}

	rc := submitted(t, form.FirstName, "Jane", form.ProductHandle, "gold")
	rc.Query.Set("product_handle", "silver")
	diff.Test(t, t.Errorf, build(t, b, rc).Request.Subscription.ProductHandle, "gold")

	rc.Post.Del(form.ProductHandle)
	diff.Test(t, t.Errorf, build(t, b, rc).Request.Subscription.ProductHandle, "silver")
	diff.Test(t, t.Errorf, len(hookCalls), 0)

	rc.Query.Del("product_handle")
	diff.Test(t, t.Errorf, build(t, b, rc).Request.Subscription.ProductHandle, "default-plan")
	diff.Test(t, t.Errorf, hookCalls, []string{""})

	b.Hooks.DefaultProduct = nil
	diff.Test(t, t.Errorf, build(t, b, rc).Request.Subscription.ProductHandle, "")
}

func TestBuildProductHandleFromQueryIsSentAndSkipsHook(t *testing.T) {
	called := false
	b := newBuilder(t)
	b.Hooks.DefaultProduct = func(string) string {
		called = true
		return "default-plan"
	}
	rc := submitted(t, form.FirstName, "Jane")
	rc.Query.Set("product_handle", "<b>silver</b>")
	diff.Test(t, t.Errorf, build(t, b, rc).Request.Subscription.ProductHandle, "silver")
	if called {
		t.Error("DefaultProduct called although the query named a product")
	}
}

func TestBuildMetafields(t *testing.T) {
	b := newBuilder(t)
	b.Hooks.Metafields = func() any {
		return map[string]string{"source": "landing-page"}
	}
	rc := submitted(t, form.FirstName, "Jane")
	got := generic(t, build(t, b, rc).Request)["subscription"].(map[string]any)
	diff.Test(t, t.Errorf, got["metafields"], map[string]any{"source": "landing-page"})

	b.Hooks.Metafields = func() any { return nil }
	got = generic(t, build(t, b, rc).Request)["subscription"].(map[string]any)
	if _, ok := got["metafields"]; ok {
		t.Error("nil metafields included")
	}

	b.Hooks.Metafields = func() any { return func() {} }
	_, _, err := b.Build(rc)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v; want *ValidationError", err)
	}
	diff.Test(t, t.Errorf, ve.Field, "metafields")
}

func TestBuildCredentials(t *testing.T) {
	rc := submitted(t,
		form.FirstName, "Jane",
		form.Username, "jane",
		form.UserPass, "p@ss word",
	)
	diff.Test(t, t.Errorf, build(t, newBuilder(t), rc).Credentials, Credentials{
		Username: "jane",
		Password: "p@ss word",
	})
}

func TestBuildNothingToDo(t *testing.T) {
	b := newBuilder(t)
	for _, rc := range []form.RequestContext{
		{},
		{Post: url.Values{}},
		submitted(t, "unregistered", "x"),
	} {
		_, ok, err := b.Build(rc)
		if err != nil || ok {
			t.Errorf("Build(%v) = %v, %v; want false, nil", rc.Post, ok, err)
		}
	}
}

func TestBuildSecurity(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*form.RequestContext)
	}{
		{"missing nonce", func(rc *form.RequestContext) { rc.Post.Del(DefaultNonceField) }},
		{"missing submit", func(rc *form.RequestContext) { rc.Post.Del(form.SubmitKey) }},
		{"missing object id", func(rc *form.RequestContext) { rc.Post.Del(form.ObjectIDKey) }},
		{"forged nonce", func(rc *form.RequestContext) { rc.Post.Set(DefaultNonceField, "forged") }},
		{"other session", func(rc *form.RequestContext) { rc.Session = "someone-else" }},
		{"no session", func(rc *form.RequestContext) { rc.Session = "" }},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rc := submitted(t, form.FirstName, "Jane")
			tt.mutate(&rc)
			sub, ok, err := newBuilder(t).Build(rc)
			var se *SecurityError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v; want *SecurityError", err)
			}
			if ok {
				t.Error("ok = true")
			}
			diff.Test(t, t.Errorf, sub, Submission{})
		})
	}

	// a Builder without a verifier accepts nothing
	rc := submitted(t, form.FirstName, "Jane")
	var se *SecurityError
	if _, _, err := (&Builder{}).Build(rc); !errors.As(err, &se) {
		t.Errorf("err = %v; want *SecurityError", err)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	kv := []string{
		form.ProductHandle, "basic",
		form.ProductID, "10",
		form.ProductPricePointHandle, "monthly",
		form.ProductPricePointID, "5",
		form.CouponCode, "SAVE10",
		form.ComponentID, "42",
		form.ComponentPricePointID, "7",
		form.ComponentPricePointHandle, "seats-std",
		form.ComponentQuantity, "3",
		form.FirstName, "Jane",
		form.LastName, "Doe",
		form.EmailAddress, "jane@x.com",
		form.CCEmails, "a@x.com,b@x.com",
		form.Organisation, "Acme",
		form.BillingReference, "ref-1",
		form.Address1, "1 Main St",
		form.Address2, "Unit 2",
		form.City, "Springfield",
		form.State, "IL",
		form.Zip, "62701",
		form.Country, "US",
		form.Phone, "555-0100",
		form.Verified, "on",
		form.TaxExempt, "on",
		form.VATNumber, "GB123",
		form.BillingFirstName, "Jane",
		form.BillingLastName, "Doe",
		form.CardNumber, "4111111111111111",
		form.ExpiryMonth, "12",
		form.ExpiryYear, "2030",
		form.BillingAddress1, "1 Main St",
		form.BillingAddress2, "Unit 2",
		form.BillingCity, "Springfield",
		form.BillingState, "IL",
		form.BillingZip, "62701",
		form.BillingCountry, "US",
	}
	b := newBuilder(t)
	b.Hooks.Metafields = func() any { return map[string]any{"campaign": "spring"} }
	sub := build(t, b, submitted(t, kv...))

	data, err := json.Marshal(sub.Request)
	if err != nil {
		t.Fatal(err)
	}
	var back Request
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, back, sub.Request)

	got := generic(t, back)["subscription"].(map[string]any)
	diff.Test(t, t.Errorf, len(got), 9)
	diff.Test(t, t.Errorf, len(got["customer_attributes"].(map[string]any)), 16)
	diff.Test(t, t.Errorf, len(got["credit_card_attributes"].(map[string]any)), 11)
	diff.Test(t, t.Errorf, got["customer_attributes"].(map[string]any)["reference"], "ref-1")
}

func ptr(s string) *string { return &s }

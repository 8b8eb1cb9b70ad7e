// Package form holds the signup form: its registered fields, sanitization of
// submitted values, and resolution of field defaults.
package form

import (
	"net/http"
	"net/url"

	"github.com/pkevan/wp-chargify/values"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Values are sanitized form values keyed by field key. Values is immutable;
// the zero value has no values.
type Values struct {
	m map[string]string
}

// NewValues returns Values holding a copy of m.
func NewValues(m map[string]string) Values {
	return Values{m: maps.Clone(m)}
}

// Get returns the value for key, or "" if none was submitted.
func (v Values) Get(key string) string { return v.m[key] }

// Lookup reports the value for key and whether it was submitted.
func (v Values) Lookup(key string) (string, bool) {
	s, ok := v.m[key]
	return s, ok
}

// Bool reports whether the value for key is a checked checkbox.
func (v Values) Bool(key string) bool { return values.Checked(v.m[key]) }

// Truthy returns the value for key if it is truthy; otherwise "".
func (v Values) Truthy(key string) string {
	if s := v.m[key]; values.Truthy(s) {
		return s
	}
	return ""
}

func (v Values) Len() int { return len(v.m) }

// Keys returns the submitted keys in sorted order.
func (v Values) Keys() []string {
	keys := maps.Keys(v.m)
	slices.Sort(keys)
	return keys
}

// RequestContext is what a single request submitted: the POST body and the
// query string, plus the visitor session the request belongs to.
type RequestContext struct {
	Post    url.Values
	Query   url.Values
	Session string
}

// FromRequest returns the RequestContext for r. The body of r is parsed as a
// form if it has not been already.
func FromRequest(r *http.Request, session string) (RequestContext, error) {
	if err := r.ParseForm(); err != nil {
		return RequestContext{}, err
	}
	post := r.PostForm
	if post == nil {
		post = url.Values{}
	}
	return RequestContext{
		Post:    post,
		Query:   r.URL.Query(),
		Session: session,
	}, nil
}

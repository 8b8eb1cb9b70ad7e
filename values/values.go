package values

import "strings"

// Coalesce returns the first non-zero value in a, if any; otherwise it returns
// the zero value of T.
func Coalesce[T comparable](a ...T) T {
	var zero T
	for _, v := range a {
		if v != zero {
			return v
		}
	}
	return zero
}

// Truthy reports whether a submitted form value counts as set. Only the
// empty string and "0" do not; "off" may well be a coupon code.
func Truthy(s string) bool {
	return s != "" && s != "0"
}

// Checked reports whether a submitted checkbox value means checked. It is
// Truthy, except that "false" and "off", in any case, are unchecked too.
func Checked(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// Ptr returns a pointer to s, or nil if s is empty.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

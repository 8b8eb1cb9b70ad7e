// Package they provides utilities for learning what HTTP clients want.
package they

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"sync"
)

var patterns sync.Map // pattern -> *regexp.Regexp

// Want reports whether the request is for the given method and pattern. The
// provided pattern is automatically anchored at both ends.
//
// It panics if the pattern is not a valid regular expression.
func Want(r *http.Request, method, pattern string) bool {
	v, ok := patterns.Load(pattern)
	if !ok {
		v, _ = patterns.LoadOrStore(pattern, regexp.MustCompile("^"+pattern+"$"))
	}
	return r.Method == method && v.(*regexp.Regexp).MatchString(r.URL.Path)
}

// Sent decodes the JSON request body into a generic value. It returns nil if
// the body is empty or not JSON.
func Sent(r *http.Request) map[string]any {
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

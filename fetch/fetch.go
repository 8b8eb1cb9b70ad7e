// Package fetch sends JSON requests and interprets the responses into Go
// values.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/exp/maps"
)

// StatusError is returned by OK for any response other than 200.
type StatusError struct {
	Code   int    // e.g. 422
	Status string // the reason phrase, e.g. "Unprocessable Entity"
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: unexpected status %d %s", e.Code, e.Status)
}

// DecodeError is returned when a 200 response body cannot be decoded into
// the desired type.
type DecodeError struct {
	err error
}

func (e *DecodeError) Unwrap() error { return e.err }
func (e *DecodeError) Error() string { return "fetch: decoding response: " + e.err.Error() }

// Do sends a request with body and returns the response interpreted as R.
//
// A nil body sends no body. An io.Reader or string body is sent as-is; any
// other value is encoded as JSON and the Content-Type is set accordingly.
//
// Each opt may be an http.Header, which is copied onto the request, or a
// *url.Userinfo, which sets basic auth.
func Do[R any](ctx context.Context, c *http.Client, method, urlStr string, body any, opts ...any) (R, error) {
	var zero R

	var isJSON bool
	var p io.Reader
	switch v := body.(type) {
	case nil:
	case io.Reader:
		p = v
	case string:
		p = strings.NewReader(v)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return zero, err
		}
		p = bytes.NewReader(data)
		isJSON = true
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, p)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")
	if isJSON {
		// set before opts so callers may clobber it
		req.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case http.Header:
			maps.Copy(req.Header, v)
		case *url.Userinfo:
			pass, _ := v.Password()
			req.SetBasicAuth(v.Username(), pass)
		}
	}

	if c == nil {
		c = http.DefaultClient
	}
	res, err := c.Do(req)
	if err != nil {
		return zero, err
	}
	return interpret[R](res)
}

// OK is like Do but reports a *StatusError for any response status other
// than 200. The response body is read into the error and closed.
func OK[R any](ctx context.Context, c *http.Client, method, urlStr string, body any, opts ...any) (R, error) {
	var zero R
	res, err := Do[*http.Response](ctx, c, method, urlStr, body, opts...)
	if err != nil {
		return zero, err
	}
	if res.StatusCode == http.StatusOK {
		return interpret[R](res)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	return zero, &StatusError{
		Code:   res.StatusCode,
		Status: reasonPhrase(res),
		Body:   data,
	}
}

// reasonPhrase returns the status text the server sent, falling back to the
// standard text for the code.
func reasonPhrase(res *http.Response) string {
	code := fmt.Sprint(res.StatusCode)
	if s := strings.TrimSpace(strings.TrimPrefix(res.Status, code)); s != "" {
		return s
	}
	return http.StatusText(res.StatusCode)
}

func interpret[R any](res *http.Response) (R, error) {
	t := func(v any) R {
		return v.(R)
	}

	var zero R

	switch any(zero).(type) {
	case *http.Response:
		// caller is responsible for closing
		return t(res), nil
	case struct{}:
		res.Body.Close()
		return zero, nil
	case []byte:
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		return t(data), err
	case string:
		defer res.Body.Close()
		var b strings.Builder
		_, err := io.Copy(&b, res.Body)
		return t(b.String()), err
	default:
		var j R
		defer res.Body.Close()
		if err := json.NewDecoder(res.Body).Decode(&j); err != nil {
			return zero, &DecodeError{err}
		}
		return j, nil
	}
}

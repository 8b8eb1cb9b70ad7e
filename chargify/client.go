package chargify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/pkevan/wp-chargify/fetch"
)

var debugMode = os.Getenv("CHARGIFY_DEBUG") == "1"

// Error is reported for any response from Chargify other than 200 OK.
type Error struct {
	Status  int    // HTTP status code
	Message string // the status message sent by Chargify, e.g. "Unprocessable Entity"

	// Errors holds the messages from the response body, if Chargify sent
	// any.
	Errors []string
}

func (e *Error) Error() string {
	return "chargify: " + e.Detail()
}

// Detail returns what Chargify said: the status message followed by any
// error messages from the body.
func (e *Error) Detail() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

type Client struct {
	APIKey    string
	Subdomain string // e.g. "acme" for https://acme.chargify.com

	// BaseURL, if set, is used instead of the URL derived from Subdomain.
	BaseURL string

	// Header is sent with every request in addition to the auth header.
	Header http.Header

	HTTPClient *http.Client
	Logf       func(format string, args ...any)
}

func (c *Client) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + c.Subdomain + ".chargify.com"
}

// Get sends a GET request for path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, "GET", path, nil, out)
}

// Post sends body as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, "POST", path, body, out)
}

// Do sends a request to Chargify. Any response status other than 200 is
// reported as an *Error. A 200 response that is not valid JSON is logged and
// treated as empty; out is left untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	urlStr, err := url.JoinPath(c.baseURL(), path)
	if err != nil {
		return err
	}

	var traceID string
	if debugMode {
		traceID = uuid.NewString()
		c.logf("CHARGIFY: >> %s: %s %s", traceID, method, path)
		if body != nil {
			c.logf("CHARGIFY: >> %s: %# v", traceID, pretty.Formatter(body))
		}
	}

	opts := []any{url.UserPassword(c.APIKey, "x")}
	if c.Header != nil {
		opts = append(opts, c.Header)
	}
	raw, err := fetch.OK[json.RawMessage](ctx, c.HTTPClient, method, urlStr, body, opts...)

	var se *fetch.StatusError
	if errors.As(err, &se) {
		if debugMode {
			c.logf("CHARGIFY: << %s: %d %s", traceID, se.Code, se.Body)
		}
		return newError(se)
	}
	var de *fetch.DecodeError
	if errors.As(err, &de) {
		c.logf("chargify: %s %s: treating undecodable response as empty: %v", method, path, err)
		return nil
	}
	if err != nil {
		return err
	}

	if debugMode {
		c.logf("CHARGIFY: << %s: %s", traceID, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logf("chargify: %s %s: treating unexpected response shape as empty: %v", method, path, err)
	}
	return nil
}

func newError(se *fetch.StatusError) *Error {
	e := &Error{
		Status:  se.Code,
		Message: se.Status,
	}

	// Chargify reports most failures as {"errors": [...]}, but some
	// endpoints send a single string.
	var v struct {
		Errors json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(se.Body, &v) != nil || len(v.Errors) == 0 {
		return e
	}
	var list []string
	if json.Unmarshal(v.Errors, &list) == nil {
		e.Errors = list
		return e
	}
	var one string
	if json.Unmarshal(v.Errors, &one) == nil && one != "" {
		e.Errors = []string{one}
	}
	return e
}

// FromEnv returns a Client using CHARGIFY_API_KEY and CHARGIFY_SUBDOMAIN.
func FromEnv() (*Client, error) {
	key, ok := os.LookupEnv("CHARGIFY_API_KEY")
	if !ok {
		return nil, errors.New("chargify: missing CHARGIFY_API_KEY")
	}
	sub, ok := os.LookupEnv("CHARGIFY_SUBDOMAIN")
	if !ok {
		return nil, errors.New("chargify: missing CHARGIFY_SUBDOMAIN")
	}
	return &Client{APIKey: key, Subdomain: sub}, nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

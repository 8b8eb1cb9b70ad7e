// Package fetchtest starts throwaway HTTP servers for tests of API clients.
package fetchtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

// Server is a test server and a count of the requests it has served.
type Server struct {
	*httptest.Server
	hits atomic.Int64
}

// Hits reports the number of requests served so far.
func (s *Server) Hits() int { return int(s.hits.Load()) }

// NewServer starts a server running h that is closed when the test ends.
func NewServer(t *testing.T, h http.HandlerFunc) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// NewTLSServer is like NewServer but serves TLS. Use s.Client() to talk to
// it.
func NewTLSServer(t *testing.T, h http.HandlerFunc) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Rewriting returns a client that sends every request to s regardless of
// the scheme and host in the request URL. It is useful for clients that
// build absolute URLs from a subdomain.
func (s *Server) Rewriting() *http.Client {
	c := s.Client()
	c.Transport = &rewriteTransport{
		base:   c.Transport,
		target: s.URL,
	}
	return c
}

type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (tr *rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context()) // per RoundTrip contract
	u, err := url.Parse(tr.target)
	if err != nil {
		return nil, err
	}
	r.URL.Scheme = u.Scheme
	r.URL.Host = u.Host
	r.Host = u.Host
	return tr.base.RoundTrip(r)
}

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkevan/wp-chargify/catalog"
	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/customers"
	"github.com/pkevan/wp-chargify/envknobs"
	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/nonce"
	"github.com/pkevan/wp-chargify/options"
	"github.com/pkevan/wp-chargify/signup"
	"github.com/pkevan/wp-chargify/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const catalogCacheSize = 512

func serve(ctx context.Context, k envknobs.Knobs, addr string, resyncEvery time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	s, err := newServer(ctx, k)
	if err != nil {
		return err
	}
	if resyncEvery > 0 {
		go s.resyncLoop(ctx, resyncEvery)
	}

	fmt.Fprintf(stdout, "listening on %s\n", ln.Addr())
	return http.Serve(ln, s)
}

// server is the signup server and what it needs to refresh its catalog.
type server struct {
	http.Handler

	client  *chargify.Client
	store   options.Store
	catalog *catalog.Catalog
}

// resync copies the products from Chargify into the options store and
// drops everything the catalog remembered.
func (s *server) resync(ctx context.Context) error {
	products, err := chargify.SyncProducts(ctx, s.client, s.store)
	if err != nil {
		return err
	}
	s.catalog.Purge()
	logger.Infof("catalog: synced %d products", len(products))
	return nil
}

func (s *server) resyncLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.resync(ctx); err != nil {
				logger.Warnf("catalog: resync: %v", err)
			}
		}
	}
}

// newServer wires the signup handler and its dependencies from k.
func newServer(ctx context.Context, k envknobs.Knobs) (*server, error) {
	if err := k.ValidateServe(); err != nil {
		return nil, err
	}
	c, err := client()
	if err != nil {
		return nil, err
	}
	store, err := openStore(k)
	if err != nil {
		return nil, err
	}
	dir, err := openUsers(ctx, k)
	if err != nil {
		return nil, err
	}
	hooks, err := signup.LoadHooks(k.HooksFile)
	if err != nil {
		return nil, fmt.Errorf("hooks: %w", err)
	}

	cat := catalog.New(store, catalogCacheSize, k.CatalogTTL)
	cat.Remote = c
	cat.Logf = logger.WithField("component", "catalog").Debugf

	issuer := nonce.New([]byte(k.NonceKey), k.NonceMaxAge)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	logf := logger.WithField("component", "signup").Infof
	h := &signup.Handler{
		Builder: &signup.Builder{
			Verifier: issuer,
			Hooks:    hooks,
		},
		Resolver:      &form.Resolver{Finder: cat, Logf: vlogf},
		Tokens:        issuer,
		Billing:       c,
		Reconciler:    &customers.Reconciler{Directory: dir, Logf: logf},
		Metrics:       signup.NewMetrics(reg),
		SecureCookies: k.SecureCookies,
		Logf:          logf,
	}

	r := mux.NewRouter()
	h.Register(r)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok\n")
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s := &server{Handler: r, client: c, store: store, catalog: cat}
	if _, ok := store.(*options.Memory); ok {
		logger.Warn("REDIS_URL is not set; the catalog is kept in memory and filled from Chargify now")
		if err := s.resync(ctx); err != nil {
			logger.Warnf("catalog: initial sync: %v", err)
		}
	}
	return s, nil
}

func openUsers(ctx context.Context, k envknobs.Knobs) (*users.SQL, error) {
	if k.DBDriver == users.DriverSQLite && k.DatabaseURL != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(k.DatabaseURL), 0o700); err != nil {
			return nil, err
		}
	}
	vlogf("users: opening %s database", k.DBDriver)
	return users.Open(ctx, k.DBDriver, k.DatabaseURL)
}

package testutil

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/httpserver"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithCatalog wires a custom directory backend.
func WithCatalog(svc catalog.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = svc
	}
}

// WithDevAPI serves the catalog under /api/*.
func WithDevAPI() ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.DevAPI = true
	}
}

// WithContactRate sets the per-client contact submissions per minute.
func WithContactRate(perMinute int) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.ContactRatePerMinute = perMinute
	}
}

// WithNow fixes the server clock.
func WithNow(now func() time.Time) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Now = now
	}
}

// NewServer constructs an httptest server running the site with the bundled catalog,
// a short search debounce and deterministic map jitter.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:              ":0",
		Logger:               zap.NewNop(),
		Catalog:              catalog.NewStaticService(nil),
		SearchDebounce:       10 * time.Millisecond,
		ContactRatePerMinute: 60,
		MapRand:              func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts
}

// NewClient returns a client that keeps cookies and does not follow redirects.
func NewClient(t testing.TB) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

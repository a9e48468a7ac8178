// Package httpserver assembles the router, middleware and handlers of the site.
package httpserver

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	custommw "finitefield.org/bangalore-local/internal/httpserver/middleware"
	"finitefield.org/bangalore-local/internal/httpserver/ui"
	"finitefield.org/bangalore-local/internal/platform/observability"
	"finitefield.org/bangalore-local/internal/session"
	"finitefield.org/bangalore-local/public"
)

const handlerTimeout = 60 * time.Second

// Config holds runtime options for the HTTP server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Logger  *zap.Logger
	Catalog catalog.Service
	// DevAPI serves Catalog under /api/* and /submit-contact.
	DevAPI bool

	Sessions             *session.Manager
	WorkspaceTTL         time.Duration
	SearchDebounce       time.Duration
	ContactRatePerMinute int
	MapsAPIKey           string
	MapRand              func() *rand.Rand
	Now                  func() time.Time
}

// New constructs the HTTP server with middleware stack and embedded assets.
// Shutting the server down releases the per-session workspaces.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := cfg.Sessions
	if sessions == nil {
		var err error
		sessions, err = session.NewManager(session.Config{HashKey: session.GenerateKey()})
		if err != nil {
			return nil, fmt.Errorf("httpserver: session manager: %w", err)
		}
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Catalog:        cfg.Catalog,
		Logger:         logger,
		SearchDebounce: cfg.SearchDebounce,
		WorkspaceTTL:   cfg.WorkspaceTTL,
		MapsAPIKey:     cfg.MapsAPIKey,
		MapRand:        cfg.MapRand,
		Now:            cfg.Now,
	})

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(handlerTimeout))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	if cfg.DevAPI && cfg.Catalog != nil {
		api := catalog.NewAPIHandler(cfg.Catalog)
		router.Handle("/api/*", api)
		router.Handle("/submit-contact", api)
	}

	mountSiteRoutes(router, handlers, routeOptions{
		Sessions: sessions,
		Contact:  custommw.NewRateLimiter(cfg.ContactRatePerMinute),
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}
	srv.RegisterOnShutdown(handlers.Close)
	return srv, nil
}

type routeOptions struct {
	Sessions custommw.SessionStore
	Contact  *custommw.RateLimiter
}

func mountSiteRoutes(router chi.Router, h *ui.Handlers, opts routeOptions) {
	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF())

		r.Get("/", h.DirectoryPage)
		r.Get("/search", h.Search)
		r.Get("/category/{name}", h.Category)
		r.Get("/business/{id}", h.BusinessPage)

		r.Route("/directory", func(r chi.Router) {
			r.Use(custommw.RequireHTMX())
			r.Get("/results", h.DirectoryResults)
			r.Post("/search", h.DirectorySearch)
			r.Post("/more", h.DirectoryLoadMore)
			r.Post("/reset", h.DirectoryReset)
			r.Post("/tags/{field}/remove", h.DirectoryRemoveTag)
			r.Post("/category/{name}", h.DirectoryCategory)
			r.Post("/location/{name}", h.DirectoryLocation)
		})

		r.Get("/contact", h.ContactPage)
		r.With(opts.Contact.Limit()).Post("/contact", h.ContactSubmit)

		r.Get("/map", h.MapPage)
		r.Post("/map/ready", h.MapReady)
		r.Get("/map/scene", h.MapScene)
		r.Post("/map/markers/{id}", h.MapMarker)
		r.Post("/map/entries/{id}", h.MapEntry)
		r.Post("/map/locate", h.MapLocate)

		r.NotFound(h.NotFound)
	})
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}

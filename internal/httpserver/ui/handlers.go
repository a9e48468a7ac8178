package ui

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	custommw "finitefield.org/bangalore-local/internal/httpserver/middleware"
	"finitefield.org/bangalore-local/internal/platform/requestctx"
	"finitefield.org/bangalore-local/internal/templates"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Catalog        catalog.Service
	Logger         *zap.Logger
	SearchDebounce time.Duration
	WorkspaceTTL   time.Duration
	MapsAPIKey     string
	// MapRand seeds synthetic marker positions; nil uses a time-seeded source per map.
	MapRand func() *rand.Rand
	Now     func() time.Time
}

// Handlers exposes HTTP handlers for pages and fragments.
type Handlers struct {
	catalog    catalog.Service
	workspaces *workspaceStore
	mapsAPIKey string
	now        func() time.Time
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	svc := deps.Catalog
	if svc == nil {
		svc = catalog.NewStaticService(nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := workspaceConfig{
		catalog:  svc,
		logger:   logger,
		debounce: deps.SearchDebounce,
		mapRand:  deps.MapRand,
	}
	return &Handlers{
		catalog:    svc,
		workspaces: newWorkspaceStore(cfg, deps.WorkspaceTTL, now),
		mapsAPIKey: deps.MapsAPIKey,
		now:        now,
	}
}

// Close releases every workspace.
func (h *Handlers) Close() {
	h.workspaces.close()
}

// workspace returns the workspace of the request's session.
func (h *Handlers) workspace(r *http.Request) *workspace {
	id := ""
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		id = sess.ID()
	}
	return h.workspaces.get(id)
}

func layout(r *http.Request, title string) templates.Layout {
	return templates.Layout{Title: title, CSRFToken: custommw.CSRFTokenFromContext(r)}
}

// NotFound renders the not-found page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.")
}

func renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	page := templates.ErrorPage{Layout: layout(r, heading), Heading: heading, Message: message}
	templ.Handler(templates.Error(page), templ.WithStatus(status)).ServeHTTP(w, r)
}

func logger(r *http.Request) *zap.Logger {
	return requestctx.Logger(r.Context())
}

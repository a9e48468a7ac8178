package ui

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/contact"
	"finitefield.org/bangalore-local/internal/directory"
	"finitefield.org/bangalore-local/internal/mapview"
)

// workspace holds the page controllers of one visitor session.
type workspace struct {
	directory *directory.Controller
	page      *directory.PageState

	contactMu sync.Mutex
	contact   *contact.Controller
	form      *contact.FormState

	mapMu sync.Mutex
	maps  *mapview.Controller
	scene *mapview.Scene

	lastSeen time.Time
}

type workspaceConfig struct {
	catalog  catalog.Service
	logger   *zap.Logger
	debounce time.Duration
	mapRand  func() *rand.Rand
}

func newWorkspace(cfg workspaceConfig, now time.Time) *workspace {
	page := directory.NewPageState()
	form := contact.NewFormState()
	opts := []directory.Option{directory.WithLogger(cfg.logger)}
	if cfg.debounce > 0 {
		opts = append(opts, directory.WithDebounce(cfg.debounce))
	}
	ws := &workspace{
		directory: directory.NewController(cfg.catalog, page, page, opts...),
		page:      page,
		contact:   contact.NewController(cfg.catalog, form, cfg.logger),
		form:      form,
		lastSeen:  now,
	}
	ws.resetMap(cfg)
	return ws
}

// resetMap discards the previous map page, as a page reload does.
func (ws *workspace) resetMap(cfg workspaceConfig) {
	scene := mapview.NewScene()
	opts := []mapview.Option{mapview.WithLogger(cfg.logger)}
	if cfg.mapRand != nil {
		opts = append(opts, mapview.WithRand(cfg.mapRand()))
	}
	ws.scene = scene
	ws.maps = mapview.NewController(cfg.catalog, scene, scene, scene, opts...)
}

func (ws *workspace) close() {
	ws.directory.Close()
}

// workspaceStore maps session ids to workspaces and drops idle ones.
type workspaceStore struct {
	cfg           workspaceConfig
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	items     map[string]*workspace
	lastSweep time.Time
}

func newWorkspaceStore(cfg workspaceConfig, ttl time.Duration, now func() time.Time) *workspaceStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &workspaceStore{
		cfg:           cfg,
		ttl:           ttl,
		sweepInterval: min(ttl, time.Minute),
		now:           now,
		items:         make(map[string]*workspace),
	}
}

// get returns the workspace of a session, creating it on first use.
func (s *workspaceStore) get(id string) *workspace {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= s.sweepInterval {
		s.sweepLocked(now)
	}
	ws, ok := s.items[id]
	if !ok {
		ws = newWorkspace(s.cfg, now)
		s.items[id] = ws
	}
	ws.lastSeen = now
	return ws
}

// sweep closes and drops workspaces idle for longer than the TTL.
func (s *workspaceStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *workspaceStore) sweepLocked(now time.Time) int {
	s.lastSweep = now
	removed := 0
	for id, ws := range s.items {
		if now.Sub(ws.lastSeen) > s.ttl {
			ws.close()
			delete(s.items, id)
			removed++
		}
	}
	if removed > 0 {
		s.cfg.logger.Debug("workspaces swept", zap.Int("removed", removed), zap.Int("remaining", len(s.items)))
	}
	return removed
}

func (s *workspaceStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// close shuts every workspace down.
func (s *workspaceStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ws := range s.items {
		ws.close()
		delete(s.items, id)
	}
}

package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/mapview"
	"finitefield.org/bangalore-local/internal/templates"
)

// sceneResponse is what the map shim replays: widget calls in order, then the sidebar.
type sceneResponse struct {
	Commands []mapview.Command `json:"commands"`
	Sidebar  string            `json:"sidebar"`
}

// MapPage renders the map page. Each load starts a fresh map.
func (h *Handlers) MapPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.mapMu.Lock()
	ws.resetMap(h.workspaces.cfg)
	sidebar := templates.NewMapSidebar(ws.scene.Sidebar())
	ws.mapMu.Unlock()

	page := templates.MapPage{
		Layout:     layout(r, "Map"),
		MapsAPIKey: h.mapsAPIKey,
		Sidebar:    sidebar,
	}
	templ.Handler(templates.MapIndex(page)).ServeHTTP(w, r)
}

// MapReady handles the widget-ready callback.
func (h *Handlers) MapReady(w http.ResponseWriter, r *http.Request) {
	h.withMap(w, r, func(c *mapview.Controller) error {
		return c.Ready(r.Context())
	})
}

// MapScene returns the pending widget calls.
func (h *Handlers) MapScene(w http.ResponseWriter, r *http.Request) {
	h.withMap(w, r, func(*mapview.Controller) error { return nil })
}

// MapMarker handles a marker click.
func (h *Handlers) MapMarker(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(pathParam(r, "id"))
	h.withMap(w, r, func(c *mapview.Controller) error {
		return c.SelectMarker(id)
	})
}

// MapEntry handles a sidebar click.
func (h *Handlers) MapEntry(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(pathParam(r, "id"))
	h.withMap(w, r, func(c *mapview.Controller) error {
		return c.SelectEntry(id)
	})
}

// MapLocate receives the browser's geolocation outcome: lat and lng, or an error code.
func (h *Handlers) MapLocate(w http.ResponseWriter, r *http.Request) {
	geo, err := geolocatorFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.withMap(w, r, func(c *mapview.Controller) error {
		return c.CenterOnMe(r.Context(), geo)
	})
}

func geolocatorFromForm(r *http.Request) (mapview.Geolocator, error) {
	if code := strings.TrimSpace(r.PostFormValue("error")); code != "" {
		err := mapview.ParseGeolocationError(code)
		if errors.Is(err, mapview.ErrUnsupported) {
			return nil, nil
		}
		return mapview.ReportedPosition{Err: err}, nil
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("lat")), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("lng")), 64)
	if errLat != nil || errLng != nil {
		return nil, errors.New("lat and lng are required")
	}
	return mapview.ReportedPosition{Position: mapview.LatLng{Lat: lat, Lng: lng}}, nil
}

// withMap runs op against the session's map and answers with the resulting scene.
// Failures the page shows (alerts, sidebar errors) still answer 200.
func (h *Handlers) withMap(w http.ResponseWriter, r *http.Request, op func(*mapview.Controller) error) {
	ws := h.workspace(r)
	ws.mapMu.Lock()
	err := op(ws.maps)
	commands := ws.scene.Drain()
	sidebar := ws.scene.Sidebar()
	ws.mapMu.Unlock()

	switch {
	case errors.Is(err, mapview.ErrNotReady):
		http.Error(w, "map not ready", http.StatusConflict)
		return
	case errors.Is(err, mapview.ErrUnknownBusiness):
		http.Error(w, "unknown business", http.StatusNotFound)
		return
	case err != nil:
		logger(r).Debug("map: operation reported error", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := templates.MapSidebarFragment(templates.NewMapSidebar(sidebar)).Render(r.Context(), &buf); err != nil {
		logger(r).Error("map: render sidebar failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sceneResponse{Commands: commands, Sidebar: buf.String()}); err != nil {
		logger(r).Warn("map: encode scene failed", zap.Error(err))
	}
}

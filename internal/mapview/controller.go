package mapview

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
)

const (
	// DefaultZoom is the zoom of a fresh map.
	DefaultZoom = 12
	// SingleMarkerZoom replaces the fitted zoom when only one business is shown.
	SingleMarkerZoom = 15
	// FocusZoom is used when a sidebar entry is selected.
	FocusZoom = 16
	// UserZoom is used after centring on the user.
	UserZoom = 14
	// JitterSpan is the width, in degrees, of the box synthetic positions fall in.
	JitterSpan = 0.1

	userMarkerTitle = "Your Location"

	msgLoadError    = "Error loading businesses. Please try again later."
	msgEmpty        = "No businesses found in this area."
	msgUnsupported  = "Geolocation is not supported by this browser."
	msgLocateFailed = "Unable to get your location. Please check your browser settings."
)

// DefaultCenter is central Bangalore.
var DefaultCenter = LatLng{Lat: 12.9716, Lng: 77.5946}

var (
	// ErrNotReady is returned before the widget has reported ready.
	ErrNotReady = errors.New("mapview: map not ready")
	// ErrUnknownBusiness is returned when a selection names no placed business.
	ErrUnknownBusiness = errors.New("mapview: unknown business")
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRand sets the source of synthetic positions.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithStyles overrides the map style set.
func WithStyles(styles []Style) Option {
	return func(c *Controller) {
		c.styles = styles
	}
}

type placement struct {
	business catalog.Business
	position LatLng
	marker   Marker
	// synthetic is set when the position was jittered around the default centre.
	synthetic bool
}

// Controller owns the map, its markers and the sidebar list of one page.
type Controller struct {
	svc     catalog.Service
	widget  Widget
	list    ListView
	alerter Alerter
	logger  *zap.Logger
	styles  []Style

	mu     sync.Mutex
	rng    *rand.Rand
	m      Map
	placed map[catalog.ID]*placement
	order  []catalog.ID
}

// NewController wires a controller to the backend, the widget, the sidebar and the alert surface.
func NewController(svc catalog.Service, widget Widget, list ListView, alerter Alerter, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		widget:  widget,
		list:    list,
		alerter: alerter,
		logger:  zap.NewNop(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		placed:  map[catalog.ID]*placement{},
	}
	if styles, err := DefaultStyles(); err == nil {
		c.styles = styles
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready handles the widget-ready callback: build the map, then load businesses.
func (c *Controller) Ready(ctx context.Context) error {
	c.mu.Lock()
	c.m = c.widget.NewMap(MapOptions{Center: DefaultCenter, Zoom: DefaultZoom, Styles: c.styles})
	c.mu.Unlock()
	return c.Load(ctx)
}

// Load fetches businesses and places a marker and a sidebar entry for each.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.m == nil {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.list.ShowLoading()
	c.mu.Unlock()

	list, err := c.svc.Businesses(ctx, catalog.Query{})
	if err != nil {
		c.logger.Error("mapview: load businesses failed", zap.Error(err))
		c.list.ShowError(msgLoadError)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.placed = map[catalog.ID]*placement{}
	c.order = nil
	bounds := NewBounds()
	entries := make([]Entry, 0, len(list))
	synthetic, dropped := 0, 0
	for _, b := range list {
		if _, dup := c.placed[b.ID]; dup {
			// Markers and sidebar entries are keyed by id; the first listing wins.
			dropped++
			continue
		}
		p := &placement{business: b}
		if b.HasCoordinates() {
			p.position = LatLng{Lat: *b.Lat, Lng: *b.Lng}
		} else {
			p.position, p.synthetic = c.jitter(), true
			synthetic++
		}
		p.marker = c.m.AddMarker(MarkerOptions{
			Position: p.position,
			Title:    b.Name,
			Icon:     businessIcon,
			Drop:     true,
			Business: b.ID,
		})
		bounds.Extend(p.position)

		c.order = append(c.order, b.ID)
		c.placed[b.ID] = p
		entries = append(entries, newEntry(b))
	}

	c.logger.Debug("mapview: businesses placed",
		zap.Int("count", len(entries)),
		zap.Int("synthetic", synthetic),
		zap.Int("duplicates", dropped),
	)

	if len(entries) > 0 {
		c.m.FitBounds(bounds)
		if len(entries) == 1 {
			c.m.SetZoom(SingleMarkerZoom)
		}
	}
	if len(entries) == 0 {
		c.list.ShowMessage(msgEmpty)
		return nil
	}
	c.list.ShowEntries(entries)
	return nil
}

// jitter places a business with no coordinates near the default centre.
// It stands in for geocoding and carries no positional meaning.
func (c *Controller) jitter() LatLng {
	return LatLng{
		Lat: DefaultCenter.Lat + (c.rng.Float64()-0.5)*JitterSpan,
		Lng: DefaultCenter.Lng + (c.rng.Float64()-0.5)*JitterSpan,
	}
}

// SelectMarker handles a marker click: close the open popup, open this one.
func (c *Controller) SelectMarker(id catalog.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.m.ClosePopup()
	c.m.OpenPopup(p.marker, newPopup(p.business))
	return nil
}

// SelectEntry handles a sidebar click: pan to the business, zoom in, open its popup.
func (c *Controller) SelectEntry(id catalog.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.m.PanTo(p.position)
	c.m.SetZoom(FocusZoom)
	c.m.ClosePopup()
	c.m.OpenPopup(p.marker, newPopup(p.business))
	return nil
}

func (c *Controller) lookup(id catalog.ID) (*placement, error) {
	if c.m == nil {
		return nil, ErrNotReady
	}
	p, ok := c.placed[id]
	if !ok {
		return nil, ErrUnknownBusiness
	}
	return p, nil
}

// CenterOnMe asks geo for the user's position. A nil geolocator means the
// capability is absent and no request is made.
func (c *Controller) CenterOnMe(ctx context.Context, geo Geolocator) error {
	c.mu.Lock()
	ready := c.m != nil
	c.mu.Unlock()
	if !ready {
		return ErrNotReady
	}

	if geo == nil {
		c.alerter.Alert(msgUnsupported)
		return ErrUnsupported
	}
	pos, err := geo.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			c.alerter.Alert(msgUnsupported)
		} else {
			c.logger.Warn("mapview: locate user failed", zap.Error(err))
			c.alerter.Alert(msgLocateFailed)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.SetCenter(pos)
	c.m.SetZoom(UserZoom)
	c.m.AddMarker(MarkerOptions{Position: pos, Title: userMarkerTitle, Icon: userIcon})
	return nil
}

// Entries returns the sidebar ids in display order.
func (c *Controller) Entries() []catalog.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalog.ID(nil), c.order...)
}

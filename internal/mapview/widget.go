// Package mapview drives the map page: markers, the sidebar list, popups and
// the centre-on-me control. The mapping widget itself sits behind small interfaces.
package mapview

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"finitefield.org/bangalore-local/internal/catalog"
)

// LatLng is a WGS84 position.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the smallest box containing every extended position.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
	empty     bool
}

// NewBounds returns an empty box.
func NewBounds() Bounds { return Bounds{empty: true} }

// Extend grows the box to contain p.
func (b *Bounds) Extend(p LatLng) {
	if b.empty {
		b.SouthWest, b.NorthEast, b.empty = p, p, false
		return
	}
	b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
}

// Contains reports whether p lies inside the box.
func (b Bounds) Contains(p LatLng) bool {
	if b.empty {
		return false
	}
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Style is one entry of the widget's visual style set.
type Style struct {
	FeatureType string           `json:"featureType" yaml:"featureType"`
	ElementType string           `json:"elementType" yaml:"elementType"`
	Stylers     []map[string]any `json:"stylers" yaml:"stylers"`
}

//go:embed styles.yaml
var stylesData []byte

// DefaultStyles returns the muted style set with the brand-coloured water.
func DefaultStyles() ([]Style, error) {
	var styles []Style
	if err := yaml.Unmarshal(stylesData, &styles); err != nil {
		return nil, fmt.Errorf("mapview: parse styles: %w", err)
	}
	return styles, nil
}

// MapOptions configures a new map.
type MapOptions struct {
	Center LatLng  `json:"center"`
	Zoom   int     `json:"zoom"`
	Styles []Style `json:"styles,omitempty"`
}

// Icon is a circle symbol.
type Icon struct {
	FillColor    string  `json:"fillColor"`
	FillOpacity  float64 `json:"fillOpacity"`
	StrokeColor  string  `json:"strokeColor"`
	StrokeWeight int     `json:"strokeWeight"`
	Scale        int     `json:"scale"`
}

var (
	businessIcon = Icon{FillColor: "#4361ee", FillOpacity: 0.9, StrokeColor: "#ffffff", StrokeWeight: 2, Scale: 10}
	userIcon     = Icon{FillColor: "#4285F4", FillOpacity: 1, StrokeColor: "#FFFFFF", StrokeWeight: 2, Scale: 8}
)

// MarkerOptions describes a marker to place.
type MarkerOptions struct {
	Position LatLng     `json:"position"`
	Title    string     `json:"title"`
	Icon     Icon       `json:"icon"`
	Drop     bool       `json:"drop,omitempty"`
	// Business is empty for markers that stand for no listing.
	Business catalog.ID `json:"business,omitempty"`
}

// Widget creates maps once the mapping library is ready.
type Widget interface {
	NewMap(opts MapOptions) Map
}

// Map is the subset of the widget's map the controller drives.
type Map interface {
	AddMarker(opts MarkerOptions) Marker
	FitBounds(b Bounds)
	SetZoom(zoom int)
	SetCenter(p LatLng)
	PanTo(p LatLng)
	OpenPopup(m Marker, content Popup)
	ClosePopup()
}

// Marker is a placed marker.
type Marker interface {
	ID() string
	Position() LatLng
}

// Alerter shows a dismissible alert.
type Alerter interface {
	Alert(message string)
}

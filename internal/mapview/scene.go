package mapview

import (
	"strconv"
	"sync"
)

// Command is one widget call, replayed in order by the browser shim.
type Command struct {
	Op       string         `json:"op"`
	Map      *MapOptions    `json:"map,omitempty"`
	MarkerID string         `json:"markerId,omitempty"`
	Marker   *MarkerOptions `json:"marker,omitempty"`
	Bounds   *Bounds        `json:"bounds,omitempty"`
	Zoom     int            `json:"zoom,omitempty"`
	Position *LatLng        `json:"position,omitempty"`
	Popup    *Popup         `json:"popup,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Command ops.
const (
	OpCreateMap  = "createMap"
	OpAddMarker  = "addMarker"
	OpFitBounds  = "fitBounds"
	OpSetZoom    = "setZoom"
	OpSetCenter  = "setCenter"
	OpPanTo      = "panTo"
	OpOpenPopup  = "openPopup"
	OpClosePopup = "closePopup"
	OpAlert      = "alert"
)

// SidebarMode is what the sidebar list currently shows.
type SidebarMode int

const (
	SidebarIdle SidebarMode = iota
	SidebarLoading
	SidebarEntries
	SidebarMessage
	SidebarError
)

// Sidebar is the rendered state of the list next to the map.
type Sidebar struct {
	Mode    SidebarMode
	Entries []Entry
	Message string
}

// Scene records widget calls for the browser and keeps the sidebar for HTML rendering.
// It implements Widget, Map, ListView and Alerter.
type Scene struct {
	mu       sync.Mutex
	commands []Command
	sidebar  Sidebar
	nextID   int
	popup    string
	markers  map[string]MarkerOptions
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{markers: map[string]MarkerOptions{}}
}

type sceneMarker struct {
	id  string
	pos LatLng
}

func (m sceneMarker) ID() string       { return m.id }
func (m sceneMarker) Position() LatLng { return m.pos }

// NewMap implements Widget. A new map discards the markers of the previous one.
func (s *Scene) NewMap(opts MapOptions) Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = map[string]MarkerOptions{}
	s.popup = ""
	s.commands = append(s.commands, Command{Op: OpCreateMap, Map: &opts})
	return s
}

func (s *Scene) AddMarker(opts MarkerOptions) Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := "m" + strconv.Itoa(s.nextID)
	s.markers[id] = opts
	s.commands = append(s.commands, Command{Op: OpAddMarker, MarkerID: id, Marker: &opts})
	return sceneMarker{id: id, pos: opts.Position}
}

func (s *Scene) FitBounds(b Bounds) {
	s.record(Command{Op: OpFitBounds, Bounds: &b})
}

func (s *Scene) SetZoom(zoom int) {
	s.record(Command{Op: OpSetZoom, Zoom: zoom})
}

func (s *Scene) SetCenter(p LatLng) {
	s.record(Command{Op: OpSetCenter, Position: &p})
}

func (s *Scene) PanTo(p LatLng) {
	s.record(Command{Op: OpPanTo, Position: &p})
}

func (s *Scene) OpenPopup(m Marker, content Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = m.ID()
	s.commands = append(s.commands, Command{Op: OpOpenPopup, MarkerID: m.ID(), Popup: &content})
}

func (s *Scene) ClosePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = ""
	s.commands = append(s.commands, Command{Op: OpClosePopup})
}

func (s *Scene) Alert(message string) {
	s.record(Command{Op: OpAlert, Message: message})
}

func (s *Scene) ShowLoading() {
	s.setSidebar(Sidebar{Mode: SidebarLoading})
}

func (s *Scene) ShowEntries(entries []Entry) {
	s.setSidebar(Sidebar{Mode: SidebarEntries, Entries: append([]Entry(nil), entries...)})
}

func (s *Scene) ShowMessage(message string) {
	s.setSidebar(Sidebar{Mode: SidebarMessage, Message: message})
}

func (s *Scene) ShowError(message string) {
	s.setSidebar(Sidebar{Mode: SidebarError, Message: message})
}

func (s *Scene) record(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
}

func (s *Scene) setSidebar(sb Sidebar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebar = sb
}

// Drain returns the commands recorded since the last call.
func (s *Scene) Drain() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.commands
	s.commands = nil
	if out == nil {
		out = []Command{}
	}
	return out
}

// Sidebar returns the current sidebar.
func (s *Scene) Sidebar() Sidebar {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb := s.sidebar
	sb.Entries = append([]Entry(nil), sb.Entries...)
	return sb
}

// OpenPopupMarker returns the marker whose popup is open, if any.
func (s *Scene) OpenPopupMarker() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popup, s.popup != ""
}

// MarkerCount is the number of markers on the current map.
func (s *Scene) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// MarkerFor returns the options of a placed marker.
func (s *Scene) MarkerFor(id string) (MarkerOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts, ok := s.markers[id]
	return opts, ok
}

var (
	_ Widget   = (*Scene)(nil)
	_ Map      = (*Scene)(nil)
	_ ListView = (*Scene)(nil)
	_ Alerter  = (*Scene)(nil)
)

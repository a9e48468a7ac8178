package templates

import (
	"github.com/a-h/templ"

	"finitefield.org/bangalore-local/internal/mapview"
)

// MapSidebar is the list next to the map.
type MapSidebar struct {
	Loading bool
	Error   string
	Message string
	Entries []mapview.Entry
}

// NewMapSidebar adapts the scene sidebar. An idle sidebar renders as loading
// until the widget reports ready.
func NewMapSidebar(sb mapview.Sidebar) MapSidebar {
	switch sb.Mode {
	case mapview.SidebarError:
		return MapSidebar{Error: sb.Message}
	case mapview.SidebarMessage:
		return MapSidebar{Message: sb.Message}
	case mapview.SidebarEntries:
		return MapSidebar{Entries: sb.Entries}
	default:
		return MapSidebar{Loading: true}
	}
}

// MapPage is the payload of the map page.
type MapPage struct {
	Layout
	MapsAPIKey string
	Sidebar    MapSidebar
}

// MapIndex renders the full map page.
func MapIndex(p MapPage) templ.Component {
	p.Nav = "map"
	return render("map", "layout", p)
}

// MapSidebarFragment renders only the sidebar list.
func MapSidebarFragment(sb MapSidebar) templ.Component {
	return render("map", "map-sidebar", sb)
}

package mapview

import (
	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/format"
)

// Entry is one sidebar row. It is keyed by business id, never by position.
type Entry struct {
	ID       catalog.ID
	Name     string
	Category string
	Rating   string
}

// ListView is the sidebar next to the map.
type ListView interface {
	ShowLoading()
	ShowEntries(entries []Entry)
	ShowMessage(message string)
	ShowError(message string)
}

// Popup is the content of the info popup.
type Popup struct {
	BusinessID catalog.ID        `json:"businessId"`
	Name       string            `json:"name"`
	Meta       string            `json:"meta"`
	Stars      []format.StarKind `json:"-"`
	StarClass  []string          `json:"stars"`
	Rating     string            `json:"rating"`
	DetailsURL string            `json:"detailsUrl"`
}

func newEntry(b catalog.Business) Entry {
	return Entry{ID: b.ID, Name: b.Name, Category: b.Category, Rating: format.Rating(b.Rating)}
}

func newPopup(b catalog.Business) Popup {
	stars := format.StarsFor(b.Rating).Symbols()
	classes := make([]string, 0, len(stars))
	for _, s := range stars {
		classes = append(classes, s.Class())
	}
	return Popup{
		BusinessID: b.ID,
		Name:       b.Name,
		Meta:       b.Category + " · " + b.Location,
		Stars:      stars,
		StarClass:  classes,
		Rating:     format.Rating(b.Rating),
		DetailsURL: b.DetailsURL(),
	}
}

// Package directory drives the business listing: filters, URL state, tags,
// pagination and the card grid.
package directory

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"finitefield.org/bangalore-local/internal/catalog"
)

// DefaultSort is the sort option of a fresh page.
const DefaultSort = "rating"

// Field names one filter control.
type Field string

const (
	FieldSearch   Field = "search"
	FieldCategory Field = "category"
	FieldRating   Field = "rating"
	FieldLocation Field = "location"
	FieldSort     Field = "sort"
)

// ParseField maps a tag or form key to a Field.
func ParseField(raw string) (Field, bool) {
	switch f := Field(strings.ToLower(strings.TrimSpace(raw))); f {
	case FieldSearch, FieldCategory, FieldRating, FieldLocation, FieldSort:
		return f, true
	default:
		return "", false
	}
}

// FilterState mirrors the filter form. Rating is the raw select value ("4", "4.5").
type FilterState struct {
	Search   string
	Category string
	Rating   string
	Location string
	Sort     string
}

// NewFilterState returns an empty filter with the default sort.
func NewFilterState() FilterState {
	return FilterState{Sort: DefaultSort}
}

// FilterFromURL seeds a filter from the page URL. Sort is not read back.
func FilterFromURL(values url.Values) FilterState {
	f := NewFilterState()
	f.Search = values.Get(string(FieldSearch))
	f.Category = values.Get(string(FieldCategory))
	f.Rating = values.Get(string(FieldRating))
	f.Location = values.Get(string(FieldLocation))
	return f
}

// Get returns the value of a field.
func (f FilterState) Get(field Field) string {
	switch field {
	case FieldSearch:
		return f.Search
	case FieldCategory:
		return f.Category
	case FieldRating:
		return f.Rating
	case FieldLocation:
		return f.Location
	case FieldSort:
		return f.Sort
	}
	return ""
}

// With returns a copy with field set to value. An empty sort falls back to the default.
func (f FilterState) With(field Field, value string) FilterState {
	switch field {
	case FieldSearch:
		f.Search = value
	case FieldCategory:
		f.Category = value
	case FieldRating:
		f.Rating = value
	case FieldLocation:
		f.Location = value
	case FieldSort:
		f.Sort = strings.TrimSpace(value)
		if f.Sort == "" {
			f.Sort = DefaultSort
		}
	}
	return f
}

// Clear empties every field except sort.
func (f FilterState) Clear() FilterState {
	return FilterState{Sort: f.sort()}
}

// Active reports whether any non-sort field is set.
func (f FilterState) Active() bool {
	q := f.Query()
	return q.Search != "" || q.Category != "" || q.Rating != "" || q.Location != ""
}

// Query is the backend request for the filter: trimmed values, sort always present.
func (f FilterState) Query() catalog.Query {
	return catalog.Query{
		Search:   strings.TrimSpace(f.Search),
		Category: strings.TrimSpace(f.Category),
		Rating:   strings.TrimSpace(f.Rating),
		Location: strings.TrimSpace(f.Location),
		Sort:     f.sort(),
	}
}

// Encode returns the query string pushed to the address bar.
func (f FilterState) Encode() string {
	return f.Query().Encode()
}

func (f FilterState) sort() string {
	if s := strings.TrimSpace(f.Sort); s != "" {
		return s
	}
	return DefaultSort
}

// matchOption returns the option equal to want ignoring case.
func matchOption(options []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	if want == "" {
		return "", false
	}
	fold := cases.Fold()
	target := fold.String(want)
	for _, opt := range options {
		if fold.String(opt) == target {
			return opt, true
		}
	}
	return "", false
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultPriceRange is shown when a business carries no price range.
	DefaultPriceRange = "₹₹"
	// DefaultHours is shown when a business carries no opening hours.
	DefaultHours = "Monday-Sunday: 9:00 AM - 9:00 PM"
)

// ID identifies a business. The backend may send it as a number or a string.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("catalog: invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so the wire shape round-trips.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Business is a directory listing as served by /api/businesses.
type Business struct {
	ID          ID       `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Location    string   `json:"location" yaml:"location"`
	Description string   `json:"description" yaml:"description"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Reviews     int      `json:"reviews,omitempty" yaml:"reviews"`
	PriceRange  string   `json:"price_range,omitempty" yaml:"price_range"`
	Image       string   `json:"image" yaml:"image"`
	Address     string   `json:"address,omitempty" yaml:"address"`
	Phone       string   `json:"phone,omitempty" yaml:"phone"`
	Website     string   `json:"website,omitempty" yaml:"website"`
	Hours       string   `json:"hours,omitempty" yaml:"hours"`
	Lat         *float64 `json:"lat,omitempty" yaml:"lat"`
	Lng         *float64 `json:"lng,omitempty" yaml:"lng"`
}

type businessAlias Business

// UnmarshalJSON tolerates coordinates encoded as numeric strings.
func (b *Business) UnmarshalJSON(data []byte) error {
	aux := struct {
		*businessAlias
		Lat optionalFloat `json:"lat"`
		Lng optionalFloat `json:"lng"`
	}{businessAlias: (*businessAlias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Lat = aux.Lat.ptr()
	b.Lng = aux.Lng.ptr()
	return nil
}

type optionalFloat struct {
	value float64
	set   bool
}

func (f *optionalFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("catalog: invalid coordinate %q", s)
	}
	f.value, f.set = v, true
	return nil
}

func (f optionalFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// HasCoordinates reports whether the business can be placed without synthesising a position.
// A business whose coordinates are both missing or both zero has none.
func (b Business) HasCoordinates() bool {
	if b.Lat == nil || b.Lng == nil {
		return false
	}
	return *b.Lat != 0 || *b.Lng != 0
}

// DisplayPriceRange returns the price range or the default when absent.
func (b Business) DisplayPriceRange() string {
	if strings.TrimSpace(b.PriceRange) == "" {
		return DefaultPriceRange
	}
	return b.PriceRange
}

// DisplayHours returns the opening hours or the default when absent.
func (b Business) DisplayHours() string {
	if strings.TrimSpace(b.Hours) == "" {
		return DefaultHours
	}
	return b.Hours
}

// DetailsURL is the path of the business detail page.
func (b Business) DetailsURL() string {
	return "/business/" + url.PathEscape(string(b.ID))
}

var textPolicy = bluemonday.StrictPolicy()

// Sanitized returns a copy whose free-text fields carry no markup.
func (b Business) Sanitized() Business {
	b.Name = cleanText(b.Name)
	b.Category = cleanText(b.Category)
	b.Location = cleanText(b.Location)
	b.Description = cleanText(b.Description)
	b.PriceRange = cleanText(b.PriceRange)
	return b
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	return strings.TrimSpace(unescapeEntities(textPolicy.Sanitize(s)))
}

// bluemonday escapes the text it keeps; templates escape again on output.
var entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'")

func unescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// Query is the request shape of GET /api/businesses. Empty fields are omitted from the wire.
type Query struct {
	Search   string
	Category string
	Rating   string
	Location string
	Sort     string
}

// Values encodes the non-empty fields.
func (q Query) Values() url.Values {
	values := url.Values{}
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	add("search", q.Search)
	add("category", q.Category)
	add("rating", q.Rating)
	add("location", q.Location)
	add("sort", q.Sort)
	return values
}

// Encode returns the query string for the non-empty fields.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// QueryFromValues reads a Query from URL values.
func QueryFromValues(values url.Values) Query {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	return Query{
		Search:   get("search"),
		Category: get("category"),
		Rating:   get("rating"),
		Location: get("location"),
		Sort:     get("sort"),
	}
}

// ContactReply is the JSON answer of POST /submit-contact.
type ContactReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

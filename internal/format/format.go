package format

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxStars is the width of every star indicator.
const MaxStars = 5

// DescriptionLimit is the number of characters a card description keeps before the ellipsis.
const DescriptionLimit = 120

// StarKind is a single symbol of a star indicator.
type StarKind int

const (
	StarFull StarKind = iota
	StarHalf
	StarEmpty
)

// Class returns the icon classes used to draw the symbol.
func (k StarKind) Class() string {
	switch k {
	case StarFull:
		return "fas fa-star"
	case StarHalf:
		return "fas fa-star-half-alt"
	default:
		return "far fa-star"
	}
}

// Stars describes a five-unit rating indicator.
type Stars struct {
	Full  int
	Half  bool
	Empty int
}

// StarsFor converts a 0–5 rating into full, half and empty symbols.
// Ratings outside the range are clamped.
func StarsFor(rating float64) Stars {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > MaxStars {
		rating = MaxStars
	}
	full := int(math.Floor(rating))
	half := rating-float64(full) >= 0.5
	empty := MaxStars - full
	if half {
		empty--
	}
	return Stars{Full: full, Half: half, Empty: empty}
}

// Symbols lists the indicator left to right.
func (s Stars) Symbols() []StarKind {
	out := make([]StarKind, 0, MaxStars)
	for i := 0; i < s.Full; i++ {
		out = append(out, StarFull)
	}
	if s.Half {
		out = append(out, StarHalf)
	}
	for i := 0; i < s.Empty; i++ {
		out = append(out, StarEmpty)
	}
	return out
}

// Rating renders a rating the way it is shown next to the stars ("4.5", "5").
func Rating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// Truncate keeps the first limit characters of s and appends "..." when anything was cut.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == limit {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString("...")
	return b.String()
}

// Description truncates a card description to DescriptionLimit characters.
func Description(s string) string {
	return Truncate(s, DescriptionLimit)
}

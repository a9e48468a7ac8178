package catalog

import (
	"sort"
	"time"
)

const (
	openingHour = 9
	closingHour = 21
	closesAt    = "9:00 PM"
)

// Find returns the business with the given id.
func Find(list []Business, id ID) (Business, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return Business{}, false
}

// Similar returns up to limit businesses of the same category, best rated first,
// excluding the business itself.
func Similar(list []Business, of Business, limit int) []Business {
	out := make([]Business, 0, limit)
	for _, b := range list {
		if b.Category == of.Category && b.ID != of.ID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// OpenStatus is a simplified opening check: every business is open 09:00–21:00 local time.
// The hours text is not parsed.
func OpenStatus(now time.Time) (open bool, closes string) {
	hour := now.Hour()
	return hour >= openingHour && hour < closingHour, closesAt
}

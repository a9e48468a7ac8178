package directory

import "finitefield.org/bangalore-local/internal/catalog"

// PageSize is the number of cards revealed per page.
const PageSize = 6

// Pagination holds the full result set and the length of its visible prefix.
// Visible never exceeds the number of results.
type Pagination struct {
	all     []catalog.Business
	visible int
}

// Reset replaces the result set and shows the first page.
func (p *Pagination) Reset(list []catalog.Business) {
	p.all = list
	p.visible = min(PageSize, len(list))
}

// LoadMore reveals the next page and reports whether anything was added.
func (p *Pagination) LoadMore() bool {
	next := min(p.visible+PageSize, len(p.all))
	if next == p.visible {
		return false
	}
	p.visible = next
	return true
}

// Visible returns the revealed prefix.
func (p *Pagination) Visible() []catalog.Business {
	return p.all[:p.visible]
}

// Total is the size of the full result set.
func (p *Pagination) Total() int { return len(p.all) }

// HasMore reports whether the load-more control should be shown.
func (p *Pagination) HasMore() bool {
	return p.visible < len(p.all)
}

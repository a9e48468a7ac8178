package templates

import (
	"github.com/a-h/templ"

	"finitefield.org/bangalore-local/internal/directory"
)

// Option is a select option.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

var ratingChoices = []Option{
	{Value: "", Label: "Any Rating"},
	{Value: "4.5", Label: "4.5+ Stars"},
	{Value: "4", Label: "4+ Stars"},
	{Value: "3.5", Label: "3.5+ Stars"},
	{Value: "3", Label: "3+ Stars"},
}

var sortChoices = []Option{
	{Value: "rating", Label: "Highest Rated"},
	{Value: "reviews", Label: "Most Reviewed"},
	{Value: "name", Label: "Name (A-Z)"},
}

// FilterForm is the filter bar. OOB renders it as an out-of-band swap.
type FilterForm struct {
	Filter     directory.FilterState
	Categories []string
	Locations  []string
	OOB        bool
}

// RatingOptions returns the minimum-rating choices with the current one selected.
func (f FilterForm) RatingOptions() []Option {
	return selectOptions(ratingChoices, f.Filter.Rating)
}

// SortOptions returns the sort choices with the current one selected.
func (f FilterForm) SortOptions() []Option {
	sort := f.Filter.Sort
	if sort == "" {
		sort = directory.DefaultSort
	}
	return selectOptions(sortChoices, sort)
}

func selectOptions(choices []Option, current string) []Option {
	out := make([]Option, len(choices))
	for i, c := range choices {
		c.Selected = c.Value == current
		out[i] = c
	}
	return out
}

// Results is the grid, the tags and the load-more control.
type Results struct {
	Mode        directory.GridMode
	Skeleton    int
	Cards       []directory.Card
	Placeholder directory.Placeholder
	LoadMore    bool
	Tags        []directory.Tag
}

// NewResults adapts a page snapshot.
func NewResults(s directory.Snapshot) Results {
	return Results{
		Mode:        s.Mode,
		Skeleton:    s.Skeleton,
		Cards:       s.Cards,
		Placeholder: s.Placeholder,
		LoadMore:    s.LoadMore,
		Tags:        s.Tags,
	}
}

func (r Results) ShowSkeleton() bool    { return r.Mode == directory.GridSkeleton }
func (r Results) ShowPlaceholder() bool { return r.Mode == directory.GridPlaceholder }
func (r Results) IsError() bool         { return r.Placeholder.Kind == directory.PlaceholderError }

// SkeletonSlots yields one element per blank card.
func (r Results) SkeletonSlots() []struct{} {
	n := r.Skeleton
	if n <= 0 {
		n = directory.PageSize
	}
	return make([]struct{}, n)
}

// NewFilterForm adapts a page snapshot.
func NewFilterForm(s directory.Snapshot) FilterForm {
	return FilterForm{Filter: s.Filter, Categories: s.Categories, Locations: s.Locations}
}

// DirectoryPage is the payload of the home page.
type DirectoryPage struct {
	Layout
	Form    FilterForm
	Results Results
}

// DirectoryIndex renders the full directory page.
func DirectoryIndex(p DirectoryPage) templ.Component {
	p.Nav = "directory"
	return render("directory", "layout", p)
}

type directoryFragment struct {
	Results Results
	Form    *FilterForm
}

// DirectoryResults renders the results fragment. A non-nil form is appended as an
// out-of-band swap so the filter bar follows server-side changes.
func DirectoryResults(r Results, form *FilterForm) templ.Component {
	if form != nil {
		f := *form
		f.OOB = true
		form = &f
	}
	return render("directory", "directory-fragment", directoryFragment{Results: r, Form: form})
}

package directory

import "sync"

// View receives every render of the directory page.
type View interface {
	ShowSkeleton(count int)
	ShowCards(cards []Card)
	ShowPlaceholder(p Placeholder)
	SetLoadMore(visible bool)
	SetTags(tags []Tag)
	SetCategories(options []string)
	SetLocations(options []string)
	SetFilter(f FilterState)
	ScrollToResults()
}

// Navigator updates the address bar without reloading the page.
type Navigator interface {
	PushURL(url string)
}

// PlaceholderKind distinguishes the placeholders shown instead of cards.
type PlaceholderKind int

const (
	PlaceholderEmpty PlaceholderKind = iota + 1
	PlaceholderError
)

// Placeholder replaces the grid when there is nothing to show. Both kinds offer a reset action.
type Placeholder struct {
	Kind    PlaceholderKind
	Message string
}

// GridMode is what the result grid currently holds.
type GridMode int

const (
	GridCards GridMode = iota
	GridSkeleton
	GridPlaceholder
)

// PageState records the latest render so a handler can serialise it as HTML.
type PageState struct {
	mu sync.Mutex

	mode        GridMode
	skeleton    int
	cards       []Card
	placeholder Placeholder
	loadMore    bool
	tags        []Tag
	categories  []string
	locations   []string
	filter      FilterState
	scroll      bool
	url         string
}

// NewPageState returns an empty page.
func NewPageState() *PageState {
	return &PageState{filter: NewFilterState()}
}

func (s *PageState) ShowSkeleton(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode, s.skeleton = GridSkeleton, count
}

func (s *PageState) ShowCards(cards []Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode, s.cards, s.placeholder = GridCards, cards, Placeholder{}
}

func (s *PageState) ShowPlaceholder(p Placeholder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode, s.cards, s.placeholder = GridPlaceholder, nil, p
}

func (s *PageState) SetLoadMore(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadMore = visible
}

func (s *PageState) SetTags(tags []Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = tags
}

func (s *PageState) SetCategories(options []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = options
}

func (s *PageState) SetLocations(options []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = options
}

func (s *PageState) SetFilter(f FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

func (s *PageState) ScrollToResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = true
}

// PushURL implements Navigator.
func (s *PageState) PushURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

// Snapshot is an immutable copy of the page for rendering.
type Snapshot struct {
	Mode        GridMode
	Skeleton    int
	Cards       []Card
	Placeholder Placeholder
	LoadMore    bool
	Tags        []Tag
	Categories  []string
	Locations   []string
	Filter      FilterState
	// Scroll and URL are one-shot: they are reported by the first snapshot after being set.
	Scroll bool
	URL    string
}

// Take copies the page and consumes the one-shot scroll and URL updates.
func (s *PageState) Take() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Mode:        s.mode,
		Skeleton:    s.skeleton,
		Cards:       append([]Card(nil), s.cards...),
		Placeholder: s.placeholder,
		LoadMore:    s.loadMore,
		Tags:        append([]Tag(nil), s.tags...),
		Categories:  append([]string(nil), s.categories...),
		Locations:   append([]string(nil), s.locations...),
		Filter:      s.filter,
		Scroll:      s.scroll,
		URL:         s.url,
	}
	s.scroll, s.url = false, ""
	return snap
}

package directory

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/bangalore-local/internal/catalog"
)

const (
	msgLoadError   = "Error loading businesses. Please try again later."
	msgFilterError = "Error filtering businesses. Please try again later."
	msgNoResults   = "No businesses found matching your criteria."
)

var (
	// ErrSuperseded is returned when a newer request replaced this one before it finished.
	ErrSuperseded = errors.New("directory: superseded by a newer request")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("directory: controller closed")
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for background failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebounce sets the quiet period of SearchInput.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debouncer = NewDebouncer(d)
	}
}

// WithPath sets the page path pushed to the navigator.
func WithPath(path string) Option {
	return func(c *Controller) {
		if path = strings.TrimSpace(path); path != "" {
			c.path = path
		}
	}
}

// Controller owns the filter and pagination state of one directory page.
// It is safe for concurrent use; the lock is never held across a backend call.
type Controller struct {
	svc       catalog.Service
	view      View
	nav       Navigator
	logger    *zap.Logger
	debouncer *Debouncer
	path      string

	mu      sync.Mutex
	filter  FilterState
	page    Pagination
	gen     uint64
	cancel  context.CancelFunc
	pending chan struct{}
	closed  bool
}

// NewController wires a controller to its backend, view and navigator.
func NewController(svc catalog.Service, view View, nav Navigator, opts ...Option) *Controller {
	c := &Controller{
		svc:       svc,
		view:      view,
		nav:       nav,
		logger:    zap.NewNop(),
		debouncer: NewDebouncer(DefaultDebounce),
		path:      "/",
		filter:    NewFilterState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current filter state.
func (c *Controller) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Init runs the page-load sequence: dropdowns, the unfiltered list and, when the
// URL carried parameters, an immediate filter.
func (c *Controller) Init(ctx context.Context, values url.Values) error {
	seed := FilterFromURL(values)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.filter = FilterState{Search: seed.Search, Rating: seed.Rating, Sort: DefaultSort}
	c.view.SetFilter(c.filter)
	c.view.SetTags(nil)
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		c.loadOptions(ctx, "categories", c.svc.Categories, c.view.SetCategories, FieldCategory, seed.Category)
		return nil
	})
	g.Go(func() error {
		c.loadOptions(ctx, "locations", c.svc.Locations, c.view.SetLocations, FieldLocation, seed.Location)
		return nil
	})
	_ = g.Wait()

	if err := c.run(ctx, false, msgLoadError); err != nil {
		return err
	}
	if len(values) > 0 {
		return c.refilter(ctx)
	}
	return nil
}

// loadOptions fills one dropdown and applies the URL value once its option exists.
func (c *Controller) loadOptions(
	ctx context.Context,
	name string,
	fetch func(context.Context) ([]string, error),
	render func([]string),
	field Field,
	seeded string,
) {
	options, err := fetch(ctx)
	if err != nil {
		c.logger.Warn("directory: load dropdown failed", zap.String("dropdown", name), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	render(options)
	if match, ok := matchOption(options, seeded); ok {
		c.filter = c.filter.With(field, match)
		c.view.SetFilter(c.filter)
	}
}

// Apply replaces the form fields and filters immediately.
func (c *Controller) Apply(ctx context.Context, f FilterState) error {
	c.mu.Lock()
	c.filter = f.With(FieldSort, f.Sort)
	c.mu.Unlock()
	return c.refilter(ctx)
}

// Set changes one field and filters immediately, as a select change does.
func (c *Controller) Set(ctx context.Context, field Field, value string) error {
	c.mu.Lock()
	c.filter = c.filter.With(field, value)
	c.mu.Unlock()
	return c.refilter(ctx)
}

// Filter runs the filter transition with the current state, as a form submit does.
func (c *Controller) Filter(ctx context.Context) error {
	return c.refilter(ctx)
}

// SearchInput records a keystroke and filters once the input has been quiet for the
// debounce period. A call replaced by a later keystroke returns ErrSuperseded.
func (c *Controller) SearchInput(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.filter.Search = text
	if c.pending != nil {
		close(c.pending)
	}
	pending := make(chan struct{})
	c.pending = pending
	c.mu.Unlock()

	done := make(chan error, 1)
	c.debouncer.Debounce(func() {
		c.mu.Lock()
		current := c.pending == pending
		if current {
			c.pending = nil
		}
		c.mu.Unlock()
		if !current {
			done <- ErrSuperseded
			return
		}
		done <- c.refilter(ctx)
	})

	select {
	case err := <-done:
		return err
	case <-pending:
		return ErrSuperseded
	case <-ctx.Done():
		c.mu.Lock()
		if c.pending == pending {
			c.pending = nil
			c.debouncer.Cancel()
		}
		c.mu.Unlock()
		return ctx.Err()
	}
}

// LoadMore reveals the next page of the already fetched results.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page.LoadMore() {
		c.renderPage()
	}
}

// RemoveTag clears one field and filters with the rest intact.
func (c *Controller) RemoveTag(ctx context.Context, field Field) error {
	return c.Set(ctx, field, "")
}

// Reset clears every field, pushes the bare path and reloads the unfiltered list.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.filter = c.filter.Clear()
	c.view.SetFilter(c.filter)
	c.view.SetTags(nil)
	c.nav.PushURL(c.path)
	c.mu.Unlock()
	return c.run(ctx, false, msgLoadError)
}

// FilterByCategory is the category shortcut: set, filter, scroll to the results.
func (c *Controller) FilterByCategory(ctx context.Context, category string) error {
	return c.shortcut(ctx, FieldCategory, category)
}

// FilterByLocation is the location shortcut: set, filter, scroll to the results.
func (c *Controller) FilterByLocation(ctx context.Context, location string) error {
	return c.shortcut(ctx, FieldLocation, location)
}

func (c *Controller) shortcut(ctx context.Context, field Field, value string) error {
	err := c.Set(ctx, field, value)
	c.mu.Lock()
	c.view.ScrollToResults()
	c.mu.Unlock()
	return err
}

// Close stops the debouncer and cancels any in-flight request.
func (c *Controller) Close() {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.pending != nil {
		close(c.pending)
		c.pending = nil
	}
}

func (c *Controller) refilter(ctx context.Context) error {
	return c.run(ctx, true, msgFilterError)
}

// run performs one list round trip. Each run takes a generation and cancels the
// previous one; a response whose generation is no longer current is discarded.
func (c *Controller) run(ctx context.Context, filtered bool, errMsg string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	var query catalog.Query
	if filtered {
		query = c.filter.Query()
		c.nav.PushURL(c.path + "?" + query.Encode())
		c.view.SetFilter(c.filter)
	}
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.view.ShowSkeleton(PageSize)
	c.mu.Unlock()

	list, err := c.svc.Businesses(reqCtx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()
	if gen != c.gen || c.closed {
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		if ctx.Err() != nil {
			// Caller gave up; put the previous results back.
			c.renderPage()
			return ctx.Err()
		}
		c.logger.Error("directory: load businesses failed",
			zap.Bool("filtered", filtered),
			zap.String("query", query.Encode()),
			zap.Error(err),
		)
		c.page.Reset(nil)
		c.view.ShowPlaceholder(Placeholder{Kind: PlaceholderError, Message: errMsg})
		c.view.SetLoadMore(false)
		return err
	}

	c.page.Reset(list)
	c.renderPage()
	if filtered {
		c.view.SetTags(c.filter.Tags())
	}
	return nil
}

func (c *Controller) renderPage() {
	if c.page.Total() == 0 {
		c.view.ShowPlaceholder(Placeholder{Kind: PlaceholderEmpty, Message: msgNoResults})
		c.view.SetLoadMore(false)
		return
	}
	c.view.ShowCards(newCards(c.page.Visible()))
	c.view.SetLoadMore(c.page.HasMore())
}

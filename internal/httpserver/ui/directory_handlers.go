package ui

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/directory"
	"finitefield.org/bangalore-local/internal/templates"
)

const scrollTrigger = "directory:scroll"

// DirectoryPage renders the home page after the page-load sequence.
func (h *Handlers) DirectoryPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if err := ws.directory.Init(r.Context(), r.URL.Query()); err != nil && !isSuperseded(err) {
		logger(r).Warn("directory: page load finished with error", zap.Error(err))
	}
	snap := ws.page.Take()

	page := templates.DirectoryPage{
		Layout:  layout(r, "Discover Bangalore"),
		Form:    templates.NewFilterForm(snap),
		Results: templates.NewResults(snap),
	}
	templ.Handler(templates.DirectoryIndex(page)).ServeHTTP(w, r)
}

// DirectoryResults applies the submitted form fields and filters.
func (h *Handlers) DirectoryResults(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	err := ws.directory.Apply(r.Context(), filterFromQuery(r.URL.Query()))
	h.writeResults(w, r, ws, err, false)
}

// DirectorySearch is the debounced search box input.
func (h *Handlers) DirectorySearch(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	err := ws.directory.SearchInput(r.Context(), r.PostFormValue("search"))
	h.writeResults(w, r, ws, err, false)
}

// DirectoryLoadMore reveals the next page.
func (h *Handlers) DirectoryLoadMore(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	ws.directory.LoadMore()
	h.writeResults(w, r, ws, nil, false)
}

// DirectoryRemoveTag clears one filter.
func (h *Handlers) DirectoryRemoveTag(w http.ResponseWriter, r *http.Request) {
	field, ok := directory.ParseField(pathParam(r, "field"))
	if !ok || field == directory.FieldSort {
		http.Error(w, "unknown filter", http.StatusBadRequest)
		return
	}
	ws := h.workspace(r)
	err := ws.directory.RemoveTag(r.Context(), field)
	h.writeResults(w, r, ws, err, true)
}

// DirectoryReset clears every filter.
func (h *Handlers) DirectoryReset(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	err := ws.directory.Reset(r.Context())
	h.writeResults(w, r, ws, err, true)
}

// DirectoryCategory is the category shortcut.
func (h *Handlers) DirectoryCategory(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	err := ws.directory.FilterByCategory(r.Context(), pathParam(r, "name"))
	h.writeResults(w, r, ws, err, true)
}

// DirectoryLocation is the location shortcut.
func (h *Handlers) DirectoryLocation(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	err := ws.directory.FilterByLocation(r.Context(), pathParam(r, "name"))
	h.writeResults(w, r, ws, err, true)
}

// writeResults answers an htmx directory request with the results fragment.
// withForm appends the filter bar out of band when the server changed it.
func (h *Handlers) writeResults(w http.ResponseWriter, r *http.Request, ws *workspace, err error, withForm bool) {
	switch {
	case isSuperseded(err):
		// A newer request owns the grid.
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, directory.ErrClosed):
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		// The failure is already part of the page state.
		logger(r).Warn("directory: request failed", zap.Error(err))
	}

	snap := ws.page.Take()
	if snap.URL != "" {
		w.Header().Set("HX-Push-Url", snap.URL)
	}
	if snap.Scroll {
		w.Header().Set("HX-Trigger", scrollTrigger)
	}
	var form *templates.FilterForm
	if withForm {
		f := templates.NewFilterForm(snap)
		form = &f
	}
	templ.Handler(templates.DirectoryResults(templates.NewResults(snap), form)).ServeHTTP(w, r)
}

func isSuperseded(err error) bool {
	return errors.Is(err, directory.ErrSuperseded)
}

func filterFromQuery(values url.Values) directory.FilterState {
	get := func(f directory.Field) string { return strings.TrimSpace(values.Get(string(f))) }
	return directory.FilterState{
		Search:   values.Get(string(directory.FieldSearch)),
		Category: get(directory.FieldCategory),
		Rating:   get(directory.FieldRating),
		Location: get(directory.FieldLocation),
		Sort:     get(directory.FieldSort),
	}
}

// Search redirects the hero search box to the filtered directory.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?"+url.Values{"search": {q}}.Encode(), http.StatusSeeOther)
}

// Category redirects a category pill to the filtered directory.
func (h *Handlers) Category(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(pathParam(r, "name"))
	if name == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?"+url.Values{"category": {name}}.Encode(), http.StatusSeeOther)
}

package ui

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	custommw "finitefield.org/bangalore-local/internal/httpserver/middleware"
	"finitefield.org/bangalore-local/internal/templates"
)

const similarLimit = 3

// BusinessPage renders the detail page of one business.
func (h *Handlers) BusinessPage(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(pathParam(r, "id"))

	list, err := h.catalog.Businesses(r.Context(), catalog.Query{})
	if err != nil {
		logger(r).Error("business: load failed", zap.String("id", id.String()), zap.Error(err))
		renderError(w, r, http.StatusBadGateway, "Something went wrong", "Error loading businesses. Please try again later.")
		return
	}
	b, ok := catalog.Find(list, id)
	if !ok {
		renderError(w, r, http.StatusNotFound, "Business not found", "We could not find that business.")
		return
	}

	open, closes := catalog.OpenStatus(h.now())
	page, err := templates.NewBusinessPage(b, catalog.Similar(list, b, similarLimit), open, closes)
	if err != nil {
		logger(r).Error("business: render description failed", zap.String("id", id.String()), zap.Error(err))
		renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}
	page.CSRFToken = custommw.CSRFTokenFromContext(r)
	templ.Handler(templates.BusinessDetail(page)).ServeHTTP(w, r)
}

package ui

import (
	"net/http"

	"github.com/a-h/templ"

	custommw "finitefield.org/bangalore-local/internal/httpserver/middleware"
	"finitefield.org/bangalore-local/internal/templates"
)

// ContactPage renders the contact page with an empty form.
func (h *Handlers) ContactPage(w http.ResponseWriter, r *http.Request) {
	page := templates.ContactPage{
		Layout: layout(r, "Contact"),
		Form:   templates.ContactForm{CSRFToken: custommw.CSRFTokenFromContext(r)},
	}
	templ.Handler(templates.ContactIndex(page)).ServeHTTP(w, r)
}

// ContactSubmit validates and forwards the form. htmx requests get the form
// fragment back; plain posts get the whole page.
func (h *Handlers) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	values := r.PostForm
	values.Del(custommw.CSRFField)

	ws := h.workspace(r)
	ws.contactMu.Lock()
	// Failures are reported through the form status.
	_ = ws.contact.Submit(r.Context(), values)
	snap := ws.form.Take()
	ws.contactMu.Unlock()

	form := templates.ContactForm{FormSnapshot: snap, CSRFToken: custommw.CSRFTokenFromContext(r)}
	if custommw.IsHTMXRequest(r.Context()) {
		templ.Handler(templates.ContactFormFragment(form)).ServeHTTP(w, r)
		return
	}
	page := templates.ContactPage{Layout: layout(r, "Contact"), Form: form}
	templ.Handler(templates.ContactIndex(page)).ServeHTTP(w, r)
}

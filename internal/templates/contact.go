package templates

import (
	"github.com/a-h/templ"

	"finitefield.org/bangalore-local/internal/contact"
)

// ContactForm is the form fragment.
type ContactForm struct {
	contact.FormSnapshot
	CSRFToken string
}

// BusyLabel is shown on the submit control while the request is in flight.
func (ContactForm) BusyLabel() string { return contact.BusyLabel }

// ContactPage is the payload of the contact page.
type ContactPage struct {
	Layout
	Form ContactForm
}

// ContactIndex renders the full contact page.
func ContactIndex(p ContactPage) templ.Component {
	p.Nav = "contact"
	if p.Form.Label == "" {
		p.Form.Label = contact.SubmitLabel
	}
	return render("contact", "layout", p)
}

// ContactFormFragment renders only the form, for htmx swaps.
func ContactFormFragment(f ContactForm) templ.Component {
	if f.Label == "" {
		f.Label = contact.SubmitLabel
	}
	return render("contact", "contact-form", f)
}

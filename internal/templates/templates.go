// Package templates renders the site's pages and htmx fragments. Pages are
// html/template files embedded in the binary and exposed as templ components.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

//go:embed html/*.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

var pages = mustParse("directory", "contact", "map", "business", "error")

func mustParse(names ...string) map[string]*template.Template {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(files, "html/layout.tmpl"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		clone := template.Must(base.Clone())
		out[name] = template.Must(clone.ParseFS(files, "html/"+name+".tmpl"))
	}
	return out
}

// Layout carries the fields every full page needs.
type Layout struct {
	Title     string
	CSRFToken string
	Nav       string
}

// render returns a component executing one named template of a page set.
func render(page, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := pages[page]
		if !ok {
			return fmt.Errorf("templates: unknown page %q", page)
		}
		return t.ExecuteTemplate(w, name, data)
	})
}

// ErrorPage is the payload of a full-page error.
type ErrorPage struct {
	Layout
	Heading string
	Message string
}

// Error renders a full-page error message.
func Error(p ErrorPage) templ.Component {
	return render("error", "layout", p)
}

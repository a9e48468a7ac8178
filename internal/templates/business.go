package templates

import (
	"bytes"
	"html/template"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/directory"
	"finitefield.org/bangalore-local/internal/format"
)

var (
	markdown        = goldmark.New()
	descriptionHTML = bluemonday.UGCPolicy()
)

// BusinessPage is the payload of the detail page.
type BusinessPage struct {
	Layout
	Business    catalog.Business
	Stars       []format.StarKind
	Rating      string
	Description template.HTML
	Open        bool
	ClosesAt    string
	Similar     []directory.Card
}

// NewBusinessPage builds the detail payload. The description is markdown.
func NewBusinessPage(b catalog.Business, similar []catalog.Business, open bool, closesAt string) (BusinessPage, error) {
	desc, err := RenderMarkdown(b.Description)
	if err != nil {
		return BusinessPage{}, err
	}
	cards := make([]directory.Card, 0, len(similar))
	for _, s := range similar {
		cards = append(cards, directory.NewCard(s))
	}
	return BusinessPage{
		Layout:      Layout{Title: b.Name},
		Business:    b,
		Stars:       format.StarsFor(b.Rating).Symbols(),
		Rating:      format.Rating(b.Rating),
		Description: desc,
		Open:        open,
		ClosesAt:    closesAt,
		Similar:     cards,
	}, nil
}

// RenderMarkdown converts markdown to sanitised HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(descriptionHTML.SanitizeBytes(buf.Bytes())), nil
}

// BusinessDetail renders the full detail page.
func BusinessDetail(p BusinessPage) templ.Component {
	return render("business", "layout", p)
}

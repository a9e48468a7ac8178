package directory

import (
	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/format"
)

// Card is the view model of one business in the grid.
type Card struct {
	ID          catalog.ID
	Name        string
	Category    string
	Location    string
	Image       string
	Description string
	Stars       []format.StarKind
	Rating      string
	PriceRange  string
	DetailsURL  string
}

// NewCard builds the card for b.
func NewCard(b catalog.Business) Card {
	return Card{
		ID:          b.ID,
		Name:        b.Name,
		Category:    b.Category,
		Location:    b.Location,
		Image:       b.Image,
		Description: format.Description(b.Description),
		Stars:       format.StarsFor(b.Rating).Symbols(),
		Rating:      format.Rating(b.Rating),
		PriceRange:  b.DisplayPriceRange(),
		DetailsURL:  b.DetailsURL(),
	}
}

func newCards(list []catalog.Business) []Card {
	cards := make([]Card, 0, len(list))
	for _, b := range list {
		cards = append(cards, NewCard(b))
	}
	return cards
}

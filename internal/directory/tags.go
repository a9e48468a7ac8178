package directory

// Tag is a removable chip for one active filter.
type Tag struct {
	Field Field
	Label string
}

// Tags lists a chip per active non-sort field, in form order.
// The "Clear All" control is rendered whenever the list is non-empty.
func (f FilterState) Tags() []Tag {
	q := f.Query()
	var tags []Tag
	if q.Search != "" {
		tags = append(tags, Tag{Field: FieldSearch, Label: "Search: " + q.Search})
	}
	if q.Category != "" {
		tags = append(tags, Tag{Field: FieldCategory, Label: "Category: " + q.Category})
	}
	if q.Rating != "" {
		tags = append(tags, Tag{Field: FieldRating, Label: "Rating: " + q.Rating + "+"})
	}
	if q.Location != "" {
		tags = append(tags, Tag{Field: FieldLocation, Label: "Location: " + q.Location})
	}
	return tags
}

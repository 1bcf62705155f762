package domain

import "time"

// Item is a single gift on a wishlist. Price and MinContribution are in
// minor currency units; a nil price means the item cannot collect
// contributions.
type Item struct {
	ID              string
	WishlistID      string
	Title           string
	Link            string
	Price           *int64
	MinContribution *int64
	ImageURL        string
	SortOrder       int
	CreatedAt       time.Time
}

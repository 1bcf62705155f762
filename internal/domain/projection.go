package domain

import "time"

// PublicItem is the redacted item view shared by the public and the creator.
// It carries aggregate reservation/contribution state and never a name.
type PublicItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Link             string    `json:"link,omitempty"`
	Price            *int64    `json:"price"`
	MinContribution  *int64    `json:"min_contribution,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	SortOrder        int       `json:"sort_order"`
	IsReserved       bool      `json:"is_reserved"`
	TotalContributed int64     `json:"total_contributed"`
	CreatedAt        time.Time `json:"created_at"`
}

// Remaining reports how much is left to collect, or 0 for unpriced items.
func (i PublicItem) Remaining() int64 {
	if i.Price == nil {
		return 0
	}
	if rem := *i.Price - i.TotalContributed; rem > 0 {
		return rem
	}
	return 0
}

// PublicWishlist is the projection pushed to viewers and returned for slug
// reads. One canonical record, redacted here at the boundary.
type PublicWishlist struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Occasion  string       `json:"occasion,omitempty"`
	EventDate *time.Time   `json:"event_date,omitempty"`
	Currency  string       `json:"currency"`
	Slug      string       `json:"slug"`
	Items     []PublicItem `json:"items"`
}

// ManagedWishlist is the creator's view: the public projection plus the
// creator's own secret. Names stay redacted for the creator too.
type ManagedWishlist struct {
	PublicWishlist
	CreatorSecret string    `json:"creator_secret"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReservationView is the private view for the holder of a reserver secret.
type ReservationView struct {
	ID           string    `json:"id"`
	ItemID       string    `json:"item_id"`
	ItemTitle    string    `json:"item_title"`
	WishlistSlug string    `json:"wishlist_slug"`
	ReserverName string    `json:"reserver_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContributionView is the private view for the holder of a contributor secret.
type ContributionView struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	ItemTitle       string    `json:"item_title"`
	WishlistSlug    string    `json:"wishlist_slug"`
	ContributorName string    `json:"contributor_name"`
	Amount          int64     `json:"amount"`
	CreatedAt       time.Time `json:"created_at"`
}

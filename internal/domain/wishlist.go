package domain

import "time"

// Wishlist is a shareable gift list. The slug is the public handle; the
// creator secret is the only credential that unlocks management.
type Wishlist struct {
	ID            string
	Title         string
	Occasion      string
	EventDate     *time.Time
	Currency      string
	Slug          string
	CreatorSecret string
	CreatedAt     time.Time
}

// DefaultCurrency applies when a wishlist is created without one.
const DefaultCurrency = "USD"

package domain

import "time"

// Contribution is one guest's pledge toward an item's price, in minor
// currency units. Live contribution amounts for an item never sum past the
// item's price.
type Contribution struct {
	ID                string
	ItemID            string
	ContributorName   string
	Amount            int64
	ContributorSecret string
	CreatedAt         time.Time
}

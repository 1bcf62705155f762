package domain

import "time"

// Reservation marks an item as claimed by one anonymous guest. The reserver
// name is visible only to the holder of the reserver secret; an item can
// carry at most one live reservation.
type Reservation struct {
	ID             string
	ItemID         string
	ReserverName   string
	ReserverSecret string
	CreatedAt      time.Time
}

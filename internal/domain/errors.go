package domain

import "errors"

var (
	// ErrNotFound covers unknown slugs and secrets alike. A wrong secret must
	// be indistinguishable from a missing resource, so lookups never reveal
	// whether a token was close to valid.
	ErrNotFound = errors.New("not found")

	ErrTitleRequired    = errors.New("title is required")
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter code")
	ErrPriceBelowTotal  = errors.New("price is below the contributed total")
	ErrItemNotPriced    = errors.New("item has no price to contribute toward")
	ErrItemReserved     = errors.New("item is reserved and not accepting contributions")
	ErrBelowMinimum     = errors.New("amount is below the minimum contribution")
	ErrAlreadyReserved  = errors.New("item is already reserved")
	ErrExceedsRemaining = errors.New("amount exceeds the remaining price")

	// ErrGenerationExhausted means slug generation ran out of attempts; it is
	// an internal fault, not a caller mistake.
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
)

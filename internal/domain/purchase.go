package domain

import "time"

// Purchase records a customer buying one or more books.
type Purchase struct {
	ID         int
	CustomerID int
	BookIDs    []int
	PriceCents int64
	// NFe is the fiscal document key, filled in by fulfillment after the purchase is made.
	NFe       *string
	CreatedAt time.Time
}

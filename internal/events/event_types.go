package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPurchaseMade      EventType = "purchase_made"
	EventCustomerRemoved   EventType = "customer_removed"
	EventBookStatusChanged EventType = "book_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	CustomerID int       `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// PurchaseMadePayload is consumed by fulfillment to produce the fiscal document.
type PurchaseMadePayload struct {
	PurchaseID int   `json:"purchase_id"`
	BookIDs    []int `json:"book_ids"`
	PriceCents int64 `json:"price_cents"`
}

// CustomerRemovedPayload payload.
type CustomerRemovedPayload struct {
	CancelledBooks int64 `json:"cancelled_books"`
}

// BookStatusChangedPayload payload.
type BookStatusChangedPayload struct {
	BookID    int    `json:"book_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

package domain

import "time"

// BookStatus represents the lifecycle of a listed book.
type BookStatus string

const (
	BookStatusActive    BookStatus = "ACTIVE"
	BookStatusSold      BookStatus = "SOLD"
	BookStatusCancelled BookStatus = "CANCELLED"
	BookStatusDeleted   BookStatus = "DELETED"
)

// Book is a listing owned by the customer selling it.
type Book struct {
	ID         int
	Name       string
	PriceCents int64
	CustomerID int
	Status     BookStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Mutable reports whether the listing may still be edited, withdrawn or sold.
func (b *Book) Mutable() bool {
	return b.Status == BookStatusActive
}

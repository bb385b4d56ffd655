package dto

import (
	"time"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// CreateBookRequest payload.
type CreateBookRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	PriceCents int64  `json:"price_cents" validate:"required,gt=0"`
	CustomerID int    `json:"customer_id" validate:"required,gt=0"`
}

// UpdateBookRequest payload.
type UpdateBookRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	PriceCents int64  `json:"price_cents" validate:"required,gt=0"`
}

// BookListQuery captures listing filters.
type BookListQuery struct {
	Statuses   []domain.BookStatus
	CustomerID *int
	Page       int
	PageSize   int
}

// BookResponse response.
type BookResponse struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	PriceCents int64             `json:"price_cents"`
	CustomerID int               `json:"customer_id"`
	Status     domain.BookStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewBookResponse maps a book.
func NewBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:         b.ID,
		Name:       b.Name,
		PriceCents: b.PriceCents,
		CustomerID: b.CustomerID,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// NewBookList maps a page of books.
func NewBookList(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, NewBookResponse(&books[i]))
	}
	return out
}

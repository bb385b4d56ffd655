package dto

import (
	"time"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// PurchaseRequest payload. An empty book list is a domain error, not a
// validation error, so only the customer is required here.
type PurchaseRequest struct {
	CustomerID int   `json:"customer_id" validate:"required,gt=0"`
	BookIDs    []int `json:"book_ids" validate:"dive,gt=0"`
}

// PurchaseResponse response.
type PurchaseResponse struct {
	ID         int       `json:"id"`
	CustomerID int       `json:"customer_id"`
	BookIDs    []int     `json:"book_ids"`
	PriceCents int64     `json:"price_cents"`
	NFe        *string   `json:"nfe"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPurchaseResponse maps a purchase.
func NewPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		BookIDs:    p.BookIDs,
		PriceCents: p.PriceCents,
		NFe:        p.NFe,
		CreatedAt:  p.CreatedAt,
	}
}

// ReportResponse is the administrator overview.
type ReportResponse struct {
	BooksByStatus map[domain.BookStatus]int64 `json:"books_by_status"`
	AuthOutcomes  map[string]int64            `json:"auth_outcomes"`
	Errors        map[string]int64            `json:"errors"`
}

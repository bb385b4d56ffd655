package service

import (
	"context"
	"errors"
	"slices"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// PurchaseService sells books to customers.
type PurchaseService struct {
	purchases  repository.PurchaseRepository
	books      repository.BookRepository
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
}

// PurchaseDependencies bundles repositories for the purchase service.
type PurchaseDependencies struct {
	PurchaseRepo repository.PurchaseRepository
	BookRepo     repository.BookRepository
	CustomerRepo repository.CustomerRepository
	Dispatcher   events.Dispatcher
}

// NewPurchaseService constructs the service.
func NewPurchaseService(deps PurchaseDependencies) *PurchaseService {
	return &PurchaseService{
		purchases:  deps.PurchaseRepo,
		books:      deps.BookRepo,
		customers:  deps.CustomerRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Purchase buys every listed book for customerID. All books must be ACTIVE;
// they are marked SOLD together with the purchase record.
func (s *PurchaseService) Purchase(ctx context.Context, customerID int, bookIDs []int) (*domain.Purchase, error) {
	ids := slices.Clone(bookIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, apperrors.NewBadRequest(apperrors.CodePurchaseEmpty)
	}

	buyer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, notFoundOr(err, apperrors.CodeCustomerNotFound, customerID)
	}
	if !buyer.IsActive() {
		return nil, apperrors.NewNotFound(apperrors.CodeCustomerNotFound, customerID)
	}

	books, err := s.books.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int]domain.Book, len(books))
	for _, book := range books {
		found[book.ID] = book
	}

	var total int64
	for _, id := range ids {
		book, ok := found[id]
		if !ok {
			return nil, apperrors.NewNotFound(apperrors.CodeBookNotFound, id)
		}
		if !book.Mutable() {
			return nil, apperrors.NewBadRequest(apperrors.CodePurchaseUnavailable, id)
		}
		total += book.PriceCents
	}

	purchase := &domain.Purchase{
		CustomerID: buyer.ID,
		BookIDs:    ids,
		PriceCents: total,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		if errors.Is(err, repository.ErrBookUnavailable) {
			return nil, apperrors.NewBadRequest(apperrors.CodePurchaseUnavailable, s.firstUnavailable(ctx, ids))
		}
		return nil, err
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:       events.EventPurchaseMade,
		CustomerID: buyer.ID,
		Payload: events.PurchaseMadePayload{
			PurchaseID: purchase.ID,
			BookIDs:    purchase.BookIDs,
			PriceCents: purchase.PriceCents,
		},
	})
	return purchase, nil
}

// firstUnavailable finds the book another purchase sold first.
func (s *PurchaseService) firstUnavailable(ctx context.Context, ids []int) int {
	books, err := s.books.ListByIDs(ctx, ids)
	if err == nil {
		for _, book := range books {
			if !book.Mutable() {
				return book.ID
			}
		}
	}
	return ids[0]
}

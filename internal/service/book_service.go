package service

import (
	"context"
	"strings"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// BookService coordinates listing workflows.
type BookService struct {
	books      repository.BookRepository
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
}

// BookInput describes a listing.
type BookInput struct {
	Name       string
	PriceCents int64
	CustomerID int
}

// NewBookService constructs the service.
func NewBookService(books repository.BookRepository, customers repository.CustomerRepository, dispatcher events.Dispatcher) *BookService {
	return &BookService{books: books, customers: customers, dispatcher: dispatcher}
}

// Create lists a new ACTIVE book owned by input.CustomerID.
func (s *BookService) Create(ctx context.Context, input BookInput) (*domain.Book, error) {
	owner, err := s.customers.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, notFoundOr(err, apperrors.CodeCustomerNotFound, input.CustomerID)
	}
	if !owner.IsActive() {
		return nil, apperrors.NewNotFound(apperrors.CodeCustomerNotFound, input.CustomerID)
	}

	book := &domain.Book{
		Name:       strings.TrimSpace(input.Name),
		PriceCents: input.PriceCents,
		CustomerID: owner.ID,
		Status:     domain.BookStatusActive,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Get loads a book by id.
func (s *BookService) Get(ctx context.Context, id int) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.CodeBookNotFound, id)
	}
	return book, nil
}

// List returns books matching filter.
func (s *BookService) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	return s.books.List(ctx, filter)
}

// ListActive returns the books currently for sale.
func (s *BookService) ListActive(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	return s.books.List(ctx, repository.BookFilter{
		Statuses: []domain.BookStatus{domain.BookStatusActive},
		Limit:    limit,
		Offset:   offset,
	})
}

// Update changes name and price of an ACTIVE book. Ownership is checked by
// the caller before book is passed in.
func (s *BookService) Update(ctx context.Context, book *domain.Book, name string, priceCents int64) (*domain.Book, error) {
	if !book.Mutable() {
		return nil, apperrors.NewBadRequest(apperrors.CodeBookInvalidStatus, book.Status)
	}
	book.Name = strings.TrimSpace(name)
	book.PriceCents = priceCents
	if err := s.books.Update(ctx, book); err != nil {
		return nil, notFoundOr(err, apperrors.CodeBookNotFound, book.ID)
	}
	return book, nil
}

// Remove withdraws an ACTIVE book from sale.
func (s *BookService) Remove(ctx context.Context, book *domain.Book) error {
	if !book.Mutable() {
		return apperrors.NewBadRequest(apperrors.CodeBookInvalidStatus, book.Status)
	}
	old := book.Status
	book.Status = domain.BookStatusDeleted
	if err := s.books.Update(ctx, book); err != nil {
		return notFoundOr(err, apperrors.CodeBookNotFound, book.ID)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:       events.EventBookStatusChanged,
		CustomerID: book.CustomerID,
		Payload: events.BookStatusChangedPayload{
			BookID:    book.ID,
			OldStatus: string(old),
			NewStatus: string(book.Status),
		},
	})
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// CustomerService manages customer accounts.
type CustomerService struct {
	customers  repository.CustomerRepository
	books      repository.BookRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// CustomerInput describes registration and full updates.
type CustomerInput struct {
	Name     string
	Email    string
	Password string
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, books repository.BookRepository, dispatcher events.Dispatcher, bcryptCost int) *CustomerService {
	return &CustomerService{
		customers:  customers,
		books:      books,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
	}
}

// Register creates an ACTIVE customer holding the CUSTOMER role.
func (s *CustomerService) Register(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	email := normalizeEmail(input.Email)
	if err := s.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.CustomerStatusActive,
		Roles:        []domain.Role{domain.RoleCustomer},
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, storeError(err, 0)
	}
	return customer, nil
}

// Get loads a customer by id.
func (s *CustomerService) Get(ctx context.Context, id int) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.CodeCustomerNotFound, id)
	}
	return customer, nil
}

// List returns customers whose name contains filter.NameContains.
func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	return s.customers.List(ctx, filter)
}

// Update replaces name, email and password of a customer.
func (s *CustomerService) Update(ctx context.Context, id int, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if email != customer.Email {
		if err := s.ensureEmailAvailable(ctx, email); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	customer.Name = strings.TrimSpace(input.Name)
	customer.Email = email
	customer.PasswordHash = hash
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, storeError(err, id)
	}
	return customer, nil
}

// Remove deactivates the customer and cancels their active listings. The
// customer's existing tokens stop resolving on the next request.
func (s *CustomerService) Remove(ctx context.Context, id int) error {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	customer.Status = domain.CustomerStatusInactive
	if err := s.customers.Update(ctx, customer); err != nil {
		return notFoundOr(err, apperrors.CodeCustomerNotFound, id)
	}

	cancelled, err := s.books.CancelByCustomer(ctx, id)
	if err != nil {
		return err
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:       events.EventCustomerRemoved,
		CustomerID: id,
		Payload:    events.CustomerRemovedPayload{CancelledBooks: cancelled},
	})
	return nil
}

func (s *CustomerService) ensureEmailAvailable(ctx context.Context, email string) error {
	exists, err := s.customers.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return emailUnavailable()
	}
	return nil
}

func emailUnavailable() error {
	return apperrors.NewValidationError([]apperrors.FieldError{{
		Field:        "email",
		Message:      apperrors.CodeEmailUnavailable.Message,
		InternalCode: apperrors.CodeEmailUnavailable.ID,
	}})
}

// storeError maps a lost race on the email uniqueness check to the same
// validation error the pre-check returns.
func storeError(err error, id int) error {
	if errors.Is(err, repository.ErrEmailTaken) {
		return emailUnavailable()
	}
	return notFoundOr(err, apperrors.CodeCustomerNotFound, id)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

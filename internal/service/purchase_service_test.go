package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
	"github.com/spec-kit/bookstore-service/internal/repository/memory"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

type purchaseFixture struct {
	svc        *PurchaseService
	store      *memory.Store
	books      repository.BookRepository
	customers  repository.CustomerRepository
	dispatcher *recordingDispatcher
	buyer      *domain.Customer
	seller     *domain.Customer
}

func newPurchaseFixture(t *testing.T) purchaseFixture {
	t.Helper()
	store := memory.NewStore()
	f := purchaseFixture{
		store:      store,
		books:      store.Books(),
		customers:  store.Customers(),
		dispatcher: newRecordingDispatcher(),
	}
	f.svc = NewPurchaseService(PurchaseDependencies{
		PurchaseRepo: store.Purchases(),
		BookRepo:     f.books,
		CustomerRepo: f.customers,
		Dispatcher:   f.dispatcher,
	})

	ctx := context.Background()
	f.buyer = &domain.Customer{Name: "Bob", Email: "bob@b.com", Status: domain.CustomerStatusActive, Roles: []domain.Role{domain.RoleCustomer}}
	f.seller = &domain.Customer{Name: "Ana", Email: "ana@b.com", Status: domain.CustomerStatusActive, Roles: []domain.Role{domain.RoleCustomer}}
	require.NoError(t, f.customers.Create(ctx, f.buyer))
	require.NoError(t, f.customers.Create(ctx, f.seller))
	return f
}

func (f purchaseFixture) listBook(t *testing.T, name string, price int64, status domain.BookStatus) *domain.Book {
	t.Helper()
	book := &domain.Book{Name: name, PriceCents: price, CustomerID: f.seller.ID, Status: status}
	require.NoError(t, f.books.Create(context.Background(), book))
	return book
}

func TestPurchaseService_Purchase(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	dune := f.listBook(t, "Dune", 1990, domain.BookStatusActive)
	emma := f.listBook(t, "Emma", 1010, domain.BookStatusActive)

	purchase, err := f.svc.Purchase(ctx, f.buyer.ID, []int{emma.ID, dune.ID, emma.ID})
	require.NoError(t, err)

	assert.NotZero(t, purchase.ID)
	assert.Equal(t, []int{dune.ID, emma.ID}, purchase.BookIDs)
	assert.EqualValues(t, 3000, purchase.PriceCents)

	for _, id := range purchase.BookIDs {
		book, err := f.books.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.BookStatusSold, book.Status)
	}
	assert.Equal(t, []events.EventType{events.EventPurchaseMade}, f.dispatcher.types())
}

func TestPurchaseService_Rejections(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	active := f.listBook(t, "Dune", 1990, domain.BookStatusActive)
	sold := f.listBook(t, "Emma", 1010, domain.BookStatusSold)

	inactive := &domain.Customer{Name: "Gone", Email: "gone@b.com", Status: domain.CustomerStatusInactive}
	require.NoError(t, f.customers.Create(ctx, inactive))

	tests := []struct {
		name       string
		customerID int
		bookIDs    []int
		status     int
		code       string
	}{
		{name: "no books", customerID: f.buyer.ID, bookIDs: nil, status: http.StatusBadRequest, code: apperrors.CodePurchaseEmpty.ID},
		{name: "unknown buyer", customerID: 404, bookIDs: []int{active.ID}, status: http.StatusNotFound, code: apperrors.CodeCustomerNotFound.ID},
		{name: "inactive buyer", customerID: inactive.ID, bookIDs: []int{active.ID}, status: http.StatusNotFound, code: apperrors.CodeCustomerNotFound.ID},
		{name: "unknown book", customerID: f.buyer.ID, bookIDs: []int{active.ID, 999}, status: http.StatusNotFound, code: apperrors.CodeBookNotFound.ID},
		{name: "sold book", customerID: f.buyer.ID, bookIDs: []int{active.ID, sold.ID}, status: http.StatusBadRequest, code: apperrors.CodePurchaseUnavailable.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Purchase(ctx, tt.customerID, tt.bookIDs)
			requireDomainError(t, err, tt.status, tt.code)
		})
	}

	book, err := f.books.GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookStatusActive, book.Status)
	assert.Empty(t, f.dispatcher.types())
}

func TestPurchaseService_FulfillmentAssignsDocumentKey(t *testing.T) {
	f := newPurchaseFixture(t)
	NewFulfillmentService(f.dispatcher, f.store.Purchases(), zap.NewNop()).RegisterHandlers()
	book := f.listBook(t, "Dune", 1990, domain.BookStatusActive)

	purchase, err := f.svc.Purchase(context.Background(), f.buyer.ID, []int{book.ID})
	require.NoError(t, err)

	stored, ok := f.store.Purchase(purchase.ID)
	require.True(t, ok)
	require.NotNil(t, stored.NFe)
	assert.NotEmpty(t, *stored.NFe)
}

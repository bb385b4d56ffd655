// Package memory provides process-local repositories used when no Postgres
// DSN is configured and by tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
)

// Store holds every table behind one lock so a purchase can sell books atomically.
type Store struct {
	mu        sync.Mutex
	customers map[int]domain.Customer
	books     map[int]domain.Book
	purchases map[int]domain.Purchase
	seq       map[string]int
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		customers: map[int]domain.Customer{},
		books:     map[int]domain.Book{},
		purchases: map[int]domain.Purchase{},
		seq:       map[string]int{},
		now:       time.Now,
	}
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() repository.CustomerRepository { return customerRepo{s} }

// Books returns the book repository view of the store.
func (s *Store) Books() repository.BookRepository { return bookRepo{s} }

// Purchases returns the purchase repository view of the store.
func (s *Store) Purchases() repository.PurchaseRepository { return purchaseRepo{s} }

// Purchase returns a stored purchase.
func (s *Store) Purchase(id int) (domain.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	return p, ok
}

func (s *Store) next(table string) int {
	s.seq[table]++
	return s.seq[table]
}

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(customer.Email, 0) {
		return repository.ErrEmailTaken
	}
	customer.ID = r.s.next("customers")
	customer.CreatedAt = r.s.now()
	customer.UpdatedAt = customer.CreatedAt
	customer.Roles = slices.Clone(customer.Roles)
	r.s.customers[customer.ID] = *customer
	return nil
}

func (r customerRepo) Update(_ context.Context, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	if r.emailTaken(customer.Email, customer.ID) {
		return repository.ErrEmailTaken
	}
	customer.UpdatedAt = r.s.now()
	stored := *customer
	stored.Roles = slices.Clone(customer.Roles)
	r.s.customers[customer.ID] = stored
	return nil
}

// emailTaken reports whether a customer other than self holds email. Callers hold the lock.
func (r customerRepo) emailTaken(email string, self int) bool {
	for id, c := range r.s.customers {
		if id != self && c.Email == email {
			return true
		}
	}
	return false
}

func (r customerRepo) GetByID(_ context.Context, id int) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.Roles = slices.Clone(c.Roles)
	return &c, nil
}

func (r customerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.Email == email {
			c.Roles = slices.Clone(c.Roles)
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r customerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r customerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
	out := []domain.Customer{}
	for _, id := range sortedKeys(r.s.customers) {
		c := r.s.customers[id]
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return page(out, filter.Limit, filter.Offset), nil
}

type bookRepo struct{ s *Store }

func (r bookRepo) Create(_ context.Context, book *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	book.ID = r.s.next("books")
	book.CreatedAt = r.s.now()
	book.UpdatedAt = book.CreatedAt
	r.s.books[book.ID] = *book
	return nil
}

func (r bookRepo) Update(_ context.Context, book *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.books[book.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	book.CustomerID = stored.CustomerID
	book.UpdatedAt = r.s.now()
	r.s.books[book.ID] = *book
	return nil
}

func (r bookRepo) GetByID(_ context.Context, id int) (*domain.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &b, nil
}

func (r bookRepo) ListByIDs(_ context.Context, ids []int) ([]domain.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Book{}
	for _, id := range sortedKeys(r.s.books) {
		if slices.Contains(ids, id) {
			out = append(out, r.s.books[id])
		}
	}
	return out, nil
}

func (r bookRepo) List(_ context.Context, filter repository.BookFilter) ([]domain.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Book{}
	for _, id := range sortedKeys(r.s.books) {
		b := r.s.books[id]
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status) {
			continue
		}
		if filter.CustomerID != nil && *filter.CustomerID != b.CustomerID {
			continue
		}
		out = append(out, b)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r bookRepo) CancelByCustomer(_ context.Context, customerID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, b := range r.s.books {
		if b.CustomerID == customerID && b.Status == domain.BookStatusActive {
			b.Status = domain.BookStatusCancelled
			b.UpdatedAt = r.s.now()
			r.s.books[id] = b
			n++
		}
	}
	return n, nil
}

func (r bookRepo) CountByStatus(context.Context) (map[domain.BookStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[domain.BookStatus]int64{}
	for _, b := range r.s.books {
		out[b.Status]++
	}
	return out, nil
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) Create(_ context.Context, purchase *domain.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range purchase.BookIDs {
		if b, ok := r.s.books[id]; !ok || b.Status != domain.BookStatusActive {
			return repository.ErrBookUnavailable
		}
	}
	now := r.s.now()
	for _, id := range purchase.BookIDs {
		b := r.s.books[id]
		b.Status = domain.BookStatusSold
		b.UpdatedAt = now
		r.s.books[id] = b
	}
	purchase.ID = r.s.next("purchases")
	purchase.CreatedAt = now
	stored := *purchase
	stored.BookIDs = slices.Clone(purchase.BookIDs)
	r.s.purchases[purchase.ID] = stored
	return nil
}

func (r purchaseRepo) SetNFe(_ context.Context, purchaseID int, nfe string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[purchaseID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.NFe = &nfe
	r.s.purchases[purchaseID] = p
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

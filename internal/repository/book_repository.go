package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// BookFilter narrows book listings.
type BookFilter struct {
	Statuses   []domain.BookStatus
	CustomerID *int
	Limit      int
	Offset     int
}

// BookRepository encapsulates book persistence.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int) (*domain.Book, error)
	ListByIDs(ctx context.Context, ids []int) ([]domain.Book, error)
	List(ctx context.Context, filter BookFilter) ([]domain.Book, error)
	CancelByCustomer(ctx context.Context, customerID int) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.BookStatus]int64, error)
}

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository instantiates repository.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

const bookColumns = `id, name, price_cents, customer_id, status, created_at, updated_at`

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	const query = `
        INSERT INTO books (name, price_cents, customer_id, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		book.Name,
		book.PriceCents,
		book.CustomerID,
		book.Status,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	const query = `
        UPDATE books SET name=$1, price_cents=$2, status=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		book.Name,
		book.PriceCents,
		book.Status,
		book.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id=$1`
	return scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *bookRepository) ListByIDs(ctx context.Context, ids []int) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]domain.Book, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM books WHERE %s ORDER BY id LIMIT %d OFFSET %d`,
		bookColumns, strings.Join(clauses, " AND "), pageLimit(filter.Limit), pageOffset(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

func (r *bookRepository) CancelByCustomer(ctx context.Context, customerID int) (int64, error) {
	const query = `
        UPDATE books SET status=$1, updated_at=NOW()
        WHERE customer_id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.BookStatusCancelled, customerID, domain.BookStatusActive)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func collectBooks(rows pgx.Rows) ([]domain.Book, error) {
	defer rows.Close()
	books := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	if err := row.Scan(
		&book.ID,
		&book.Name,
		&book.PriceCents,
		&book.CustomerID,
		&book.Status,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) CountByStatus(ctx context.Context) (map[domain.BookStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM books GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.BookStatus]int64)
	for rows.Next() {
		var (
			status domain.BookStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// ErrBookUnavailable is returned when a book in a purchase is no longer ACTIVE.
var ErrBookUnavailable = errors.New("book no longer available")

// PurchaseRepository persists purchases.
type PurchaseRepository interface {
	// Create stores the purchase and marks every listed book SOLD in one transaction.
	Create(ctx context.Context, purchase *domain.Purchase) error
	SetNFe(ctx context.Context, purchaseID int, nfe string) error
}

type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository instantiates repository.
func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const sell = `
        UPDATE books SET status=$1, updated_at=NOW()
        WHERE id = ANY($2) AND status=$3`
	cmd, err := tx.Exec(ctx, sell, domain.BookStatusSold, purchase.BookIDs, domain.BookStatusActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != int64(len(purchase.BookIDs)) {
		return ErrBookUnavailable
	}

	const insert = `
        INSERT INTO purchases (customer_id, price_cents, nfe)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert, purchase.CustomerID, purchase.PriceCents, purchase.NFe).
		Scan(&purchase.ID, &purchase.CreatedAt); err != nil {
		return err
	}

	const link = `
        INSERT INTO purchase_books (purchase_id, book_id)
        SELECT $1, UNNEST($2::int[])`
	if _, err := tx.Exec(ctx, link, purchase.ID, purchase.BookIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *purchaseRepository) SetNFe(ctx context.Context, purchaseID int, nfe string) error {
	const query = `UPDATE purchases SET nfe=$1 WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, nfe, purchaseID)
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/developerabhi04/order-service/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// DecrementStock uses a conditional update so two concurrent placements of
// the same product cannot both pass a check before either subtracts.
func (r *Repository) DecrementStock(ctx context.Context, productID string, qty int64) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: either the product does not exist or its stock is
	// below the requested quantity.
	var stock int64
	err = r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check stock: %w", err)
	}
	return fmt.Errorf("product %s has %d in stock, %d requested: %w", productID, stock, qty, domain.ErrInsufficientStock)
}

func (r *Repository) RestoreStock(ctx context.Context, productID string, qty int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1`,
		productID, qty)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

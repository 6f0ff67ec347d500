package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/developerabhi04/order-service/internal/order/domain"
)

// Applied records one stock decrement that has already been persisted, so a
// caller can undo it if a later line item fails.
type Applied struct {
	ProductID string
	Quantity  int64
}

// Adjuster decrements product stock for the line items of a newly placed
// order. It does not own product lifecycle; the catalog store of record does.
type Adjuster struct {
	log  *slog.Logger
	repo StockRepository
}

func NewAdjuster(log *slog.Logger, repo StockRepository) *Adjuster {
	return &Adjuster{log: log, repo: repo}
}

// ReduceStock walks the line items in order and decrements each product's
// stock. On failure it returns the decrements applied so far together with
// the error; the caller decides whether to compensate via Restore.
func (a *Adjuster) ReduceStock(ctx context.Context, items []domain.OrderItem) ([]Applied, error) {
	applied := make([]Applied, 0, len(items))
	for _, it := range items {
		if err := a.repo.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			a.log.Warn("stock decrement failed", "product_id", it.ProductID, "quantity", it.Quantity, "err", err)
			return applied, err
		}
		applied = append(applied, Applied{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return applied, nil
}

// Restore adds previously decremented quantities back. All restores are
// attempted even when one fails.
func (a *Adjuster) Restore(ctx context.Context, applied []Applied) error {
	var errs error
	for _, ap := range applied {
		if err := a.repo.RestoreStock(ctx, ap.ProductID, ap.Quantity); err != nil {
			a.log.Error("stock restore failed", "product_id", ap.ProductID, "quantity", ap.Quantity, "err", err)
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

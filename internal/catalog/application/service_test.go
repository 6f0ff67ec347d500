package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/developerabhi04/order-service/internal/order/domain"
)

type fakeStockRepo struct {
	stock map[string]int64
}

func (r *fakeStockRepo) DecrementStock(_ context.Context, productID string, qty int64) error {
	have, ok := r.stock[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	if have < qty {
		return fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
	}
	r.stock[productID] -= qty
	return nil
}

func (r *fakeStockRepo) RestoreStock(_ context.Context, productID string, qty int64) error {
	r.stock[productID] += qty
	return nil
}

func newAdjuster(stock map[string]int64) (*Adjuster, *fakeStockRepo) {
	repo := &fakeStockRepo{stock: stock}
	return NewAdjuster(slog.New(slog.NewTextHandler(io.Discard, nil)), repo), repo
}

func TestReduceStockDecrementsEveryItem(t *testing.T) {
	a, repo := newAdjuster(map[string]int64{"p1": 5, "p2": 2})

	applied, err := a.ReduceStock(context.Background(), []domain.OrderItem{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %v", applied)
	}
	if repo.stock["p1"] != 2 || repo.stock["p2"] != 0 {
		t.Fatalf("stock = %v", repo.stock)
	}
}

func TestReduceStockStopsAtFirstFailure(t *testing.T) {
	a, repo := newAdjuster(map[string]int64{"p1": 5, "p2": 1, "p3": 9})

	applied, err := a.ReduceStock(context.Background(), []domain.OrderItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p3", Quantity: 1},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	// Only the p1 decrement went through; p3 was never touched.
	if len(applied) != 1 || applied[0].ProductID != "p1" {
		t.Fatalf("applied = %v", applied)
	}
	if repo.stock["p3"] != 9 {
		t.Fatalf("p3 stock = %d", repo.stock["p3"])
	}
}

func TestRestoreUndoesAppliedDecrements(t *testing.T) {
	a, repo := newAdjuster(map[string]int64{"p1": 3})

	applied, err := a.ReduceStock(context.Background(), []domain.OrderItem{{ProductID: "p1", Quantity: 3}})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if err := a.Restore(context.Background(), applied); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if repo.stock["p1"] != 3 {
		t.Fatalf("p1 stock = %d, want 3", repo.stock["p1"])
	}
}

func TestReduceStockUnknownProduct(t *testing.T) {
	a, _ := newAdjuster(map[string]int64{})

	_, err := a.ReduceStock(context.Background(), []domain.OrderItem{{ProductID: "ghost", Quantity: 1}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package application

import "context"

type StockRepository interface {
	// DecrementStock atomically subtracts qty from the product's available
	// stock, failing when the product is missing or the remaining stock
	// would go negative.
	DecrementStock(ctx context.Context, productID string, qty int64) error
	RestoreStock(ctx context.Context, productID string, qty int64) error
}

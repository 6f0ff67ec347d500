package application

import (
	"context"

	catalog "github.com/developerabhi04/order-service/internal/catalog/application"
	"github.com/developerabhi04/order-service/internal/order/domain"
	"github.com/developerabhi04/order-service/pkg/cache"
)

// OrderRepository is the store-of-record gateway. FindByID and the
// mutations return domain.ErrNotFound when the id does not resolve.
type OrderRepository interface {
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByID(ctx context.Context, id string) (domain.Order, error)
	Create(ctx context.Context, o *domain.Order) error
	UpdateStatus(ctx context.Context, o domain.Order) error
	Delete(ctx context.Context, o domain.Order) error
}

type StockAdjuster interface {
	ReduceStock(ctx context.Context, items []domain.OrderItem) ([]catalog.Applied, error)
	Restore(ctx context.Context, applied []catalog.Applied) error
}

// ReadCache is the advisory read path of the cache gateway. Invalidation
// goes through Invalidator so population and deletion derive keys the same
// way.
type ReadCache interface {
	Get(ctx context.Context, key string) (string, bool)
	SetWithTTL(ctx context.Context, key, value string)
}

type Invalidator interface {
	Invalidate(ctx context.Context, spec cache.Invalidation)
}

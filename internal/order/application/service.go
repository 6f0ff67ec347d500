package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/developerabhi04/order-service/internal/order/domain"
	"github.com/developerabhi04/order-service/pkg/cache"
)

// Service orchestrates the order lifecycle: read-through caching on reads,
// write-invalidate on mutations, and the stock side effect on placement.
type Service struct {
	log   *slog.Logger
	repo  OrderRepository
	stock StockAdjuster
	cache ReadCache
	inval Invalidator
}

func NewService(log *slog.Logger, repo OrderRepository, stock StockAdjuster, rc ReadCache, inval Invalidator) *Service {
	return &Service{log: log, repo: repo, stock: stock, cache: rc, inval: inval}
}

// PlaceInput carries the raw fields of a place-order request. The required
// amounts are pointers so an absent field is distinguishable from zero.
type PlaceInput struct {
	UserID        string
	ShippingInfo  *domain.ShippingInfo
	Items         []domain.OrderItem
	SubtotalCents *int64
	TaxCents      *int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    *int64
}

// ListForUser returns the user's orders, serving from cache within the TTL
// window. A user with no orders gets an empty list, never an error.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	key := cache.KeyMyOrders(userID)
	if orders, ok := s.cachedList(ctx, key); ok {
		return orders, nil
	}

	orders, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	s.populate(ctx, key, orders)
	return orders, nil
}

// ListAll returns every order with the owning user's display name, serving
// from cache within the TTL window.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	key := cache.KeyAllOrders
	if orders, ok := s.cachedList(ctx, key); ok {
		return orders, nil
	}

	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	s.populate(ctx, key, orders)
	return orders, nil
}

// GetOne returns a single order by id, read-through cached.
func (s *Service) GetOne(ctx context.Context, orderID string) (domain.Order, error) {
	key := cache.KeyOrder(orderID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var o domain.Order
		if err := json.Unmarshal([]byte(raw), &o); err == nil {
			return o, nil
		}
		// Malformed entries are not misses; log and fall back to the store.
		s.log.Warn("malformed cache entry", "key", key)
	}

	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	s.populate(ctx, key, o)
	return o, nil
}

// Place validates the input, creates the order, reduces stock for every
// line item, and invalidates the affected cache partitions. If stock
// reduction fails the placement is compensated: decrements already applied
// are restored and the just-created order is deleted, so either both
// effects happen or neither does.
func (s *Service) Place(ctx context.Context, in PlaceInput) error {
	if in.UserID == "" || in.ShippingInfo == nil || len(in.Items) == 0 ||
		in.SubtotalCents == nil || in.TaxCents == nil || in.TotalCents == nil {
		return fmt.Errorf("%w: shipping info, order items, user, subtotal, tax and total are required", domain.ErrInvalidOrder)
	}

	order, err := domain.NewOrder(in.UserID, *in.ShippingInfo, in.Items,
		*in.SubtotalCents, *in.TaxCents, in.ShippingCents, in.DiscountCents, *in.TotalCents)
	if err != nil {
		return err
	}

	if err := s.repo.Create(ctx, &order); err != nil {
		return err
	}

	applied, err := s.stock.ReduceStock(ctx, order.Items)
	if err != nil {
		if rerr := s.stock.Restore(ctx, applied); rerr != nil {
			s.log.Error("compensating stock restore failed", "order_id", order.ID, "err", rerr)
		}
		if derr := s.repo.Delete(ctx, order); derr != nil {
			s.log.Error("compensating order delete failed", "order_id", order.ID, "err", derr)
		}
		return err
	}

	s.inval.Invalidate(ctx, cache.Invalidation{
		Product:    true,
		Order:      true,
		Admin:      true,
		UserID:     order.UserID,
		ProductIDs: order.ProductIDs(),
	})

	s.log.Info("order placed", "order_id", order.ID, "user_id", order.UserID)
	return nil
}

// Advance moves the order one status step forward, persists it, and
// invalidates the affected cache partitions. Advancing a Delivered order
// re-asserts Delivered.
func (s *Service) Advance(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	o.Advance()
	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		return domain.Order{}, err
	}

	s.invalidateOrder(ctx, o)
	s.log.Info("order advanced", "order_id", o.ID, "status", o.Status)
	return o, nil
}

// Remove deletes the order permanently and invalidates the affected cache
// partitions.
func (s *Service) Remove(ctx context.Context, orderID string) error {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, o); err != nil {
		return err
	}

	s.invalidateOrder(ctx, o)
	s.log.Info("order removed", "order_id", o.ID)
	return nil
}

func (s *Service) invalidateOrder(ctx context.Context, o domain.Order) {
	s.inval.Invalidate(ctx, cache.Invalidation{
		Product: false,
		Order:   true,
		Admin:   true,
		UserID:  o.UserID,
		OrderID: o.ID.String(),
	})
}

func (s *Service) cachedList(ctx context.Context, key string) ([]domain.Order, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var orders []domain.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		s.log.Warn("malformed cache entry", "key", key)
		return nil, false
	}
	return orders, true
}

func (s *Service) populate(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache populate skipped", "key", key, "err", err)
		return
	}
	s.cache.SetWithTTL(ctx, key, string(raw))
}

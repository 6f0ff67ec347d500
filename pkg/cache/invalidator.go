package cache

import "context"

// Invalidation enumerates the cache partitions affected by a mutation. The
// key set is derived from the flags and identifiers alone, so invalidation
// stays deterministic.
type Invalidation struct {
	Product bool
	Order   bool
	Admin   bool

	UserID     string
	OrderID    string
	ProductIDs []string
}

// Keys computes the exact set of keys implied by the spec. Identifier-scoped
// keys are included only when the identifier is present.
func (s Invalidation) Keys() []string {
	var keys []string
	if s.Product {
		keys = append(keys, KeyLatestProducts, KeyCategories, KeyAllProducts)
		for _, id := range s.ProductIDs {
			keys = append(keys, KeyProduct(id))
		}
	}
	if s.Order {
		keys = append(keys, KeyAllOrders)
		if s.UserID != "" {
			keys = append(keys, KeyMyOrders(s.UserID))
		}
		if s.OrderID != "" {
			keys = append(keys, KeyOrder(s.OrderID))
		}
	}
	if s.Admin {
		keys = append(keys, KeyAdminStats, KeyAdminPieCharts, KeyAdminBarCharts, KeyAdminLineCharts)
	}
	return keys
}

type Invalidator struct {
	cache Cache
}

func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Invalidate deletes every key implied by the spec in a single call.
func (i *Invalidator) Invalidate(ctx context.Context, spec Invalidation) {
	keys := spec.Keys()
	if len(keys) == 0 {
		return
	}
	i.cache.Delete(ctx, keys...)
}

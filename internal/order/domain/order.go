package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

// NextStatus advances a status by one step. The function is total:
// Delivered and any unrecognized value clamp to Delivered, so no advance
// can ever move an order backwards.
func NextStatus(s Status) Status {
	switch s {
	case StatusProcessing:
		return StatusShipped
	case StatusShipped:
		return StatusDelivered
	case StatusDelivered:
		return StatusDelivered
	default:
		return StatusDelivered
	}
}

type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	PinCode string `json:"pin_code"`
}

type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PhotoURL   string `json:"photo"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
}

type Order struct {
	ID           uuid.UUID    `json:"id"`
	UserID       string       `json:"user_id"`
	UserName     string       `json:"user_name,omitempty"`
	ShippingInfo ShippingInfo `json:"shipping_info"`
	Items        []OrderItem  `json:"order_items"`

	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrder builds an order in the initial Processing state. The identifier
// and timestamps are assigned by the repository on creation. Total
// consistency is checked here only; reads never re-validate it.
func NewOrder(userID string, shipping ShippingInfo, items []OrderItem, subtotal, tax, shippingCharges, discount, total int64) (Order, error) {
	if userID == "" {
		return Order{}, fmt.Errorf("%w: user is required", ErrInvalidOrder)
	}
	if shipping.Address == "" {
		return Order{}, fmt.Errorf("%w: shipping address is required", ErrInvalidOrder)
	}
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: order items are required", ErrInvalidOrder)
	}
	for _, it := range items {
		if it.ProductID == "" {
			return Order{}, fmt.Errorf("%w: order item product id is required", ErrInvalidOrder)
		}
		if it.Quantity <= 0 {
			return Order{}, fmt.Errorf("%w: order item quantity must be positive", ErrInvalidOrder)
		}
		if it.PriceCents < 0 {
			return Order{}, fmt.Errorf("%w: order item price must not be negative", ErrInvalidOrder)
		}
	}
	for _, amount := range []int64{subtotal, tax, shippingCharges, discount, total} {
		if amount < 0 {
			return Order{}, fmt.Errorf("%w: amounts must not be negative", ErrInvalidOrder)
		}
	}
	if total != subtotal+tax+shippingCharges-discount {
		return Order{}, fmt.Errorf("%w: total does not match subtotal+tax+shipping-discount", ErrInvalidOrder)
	}

	return Order{
		UserID:        userID,
		ShippingInfo:  shipping,
		Items:         items,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shippingCharges,
		DiscountCents: discount,
		TotalCents:    total,
		Status:        StatusProcessing,
	}, nil
}

// Advance moves the order one step forward and reports whether the status
// actually changed. Advancing a Delivered order is a no-op that re-asserts
// the terminal state.
func (o *Order) Advance() bool {
	next := NextStatus(o.Status)
	if next == o.Status {
		return false
	}
	o.Status = next
	return true
}

// ProductIDs returns the distinct product ids referenced by the order's
// line items, in first-seen order.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

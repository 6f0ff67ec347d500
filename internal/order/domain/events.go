package domain

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	TotalCents int64       `json:"total_cents"`
	Items      []OrderItem `json:"items"`
}

type OrderStatusChanged struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Status  Status `json:"status"`
}

type OrderDeleted struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

package cache

// Key formats are shared with other services reading the same cache and
// must not change.
const (
	KeyAllOrders       = "all-orders"
	KeyLatestProducts  = "latest-products"
	KeyCategories      = "categories"
	KeyAllProducts     = "all-products"
	KeyAdminStats      = "stats"
	KeyAdminPieCharts  = "pie-charts"
	KeyAdminBarCharts  = "bar-charts"
	KeyAdminLineCharts = "line-charts"
)

func KeyMyOrders(userID string) string { return "my-orders-" + userID }

func KeyOrder(orderID string) string { return "order-" + orderID }

func KeyProduct(productID string) string { return "product-" + productID }

package cache

import "testing"

// Key formats are shared with other services; these must stay bit-exact.
func TestKeyFormats(t *testing.T) {
	if got := KeyMyOrders("u42"); got != "my-orders-u42" {
		t.Fatalf("my orders key = %q", got)
	}
	if KeyAllOrders != "all-orders" {
		t.Fatalf("all orders key = %q", KeyAllOrders)
	}
	if got := KeyOrder("abc"); got != "order-abc" {
		t.Fatalf("order key = %q", got)
	}
	if got := KeyProduct("p7"); got != "product-p7" {
		t.Fatalf("product key = %q", got)
	}
}

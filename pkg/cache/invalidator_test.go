package cache

import (
	"context"
	"reflect"
	"sort"
	"testing"
)

type recordingCache struct {
	deleteCalls [][]string
}

func (c *recordingCache) Get(_ context.Context, _ string) (string, bool) { return "", false }
func (c *recordingCache) SetWithTTL(_ context.Context, _, _ string)     {}
func (c *recordingCache) Delete(_ context.Context, keys ...string) {
	c.deleteCalls = append(c.deleteCalls, keys)
}

func sorted(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}

func TestInvalidationKeysOrderOnly(t *testing.T) {
	spec := Invalidation{Order: true, UserID: "u1", OrderID: "o1"}
	want := sorted([]string{"all-orders", "my-orders-u1", "order-o1"})
	if got := sorted(spec.Keys()); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestInvalidationKeysOmitAbsentIdentifiers(t *testing.T) {
	spec := Invalidation{Order: true}
	want := []string{"all-orders"}
	if got := spec.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestInvalidationKeysFullFanOut(t *testing.T) {
	spec := Invalidation{
		Product:    true,
		Order:      true,
		Admin:      true,
		UserID:     "u1",
		ProductIDs: []string{"p1", "p2"},
	}
	want := sorted([]string{
		"latest-products", "categories", "all-products",
		"product-p1", "product-p2",
		"all-orders", "my-orders-u1",
		"stats", "pie-charts", "bar-charts", "line-charts",
	})
	if got := sorted(spec.Keys()); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestInvalidateIssuesSingleDelete(t *testing.T) {
	rc := &recordingCache{}
	inv := NewInvalidator(rc)

	inv.Invalidate(context.Background(), Invalidation{Order: true, Admin: true, UserID: "u1"})
	if len(rc.deleteCalls) != 1 {
		t.Fatalf("delete called %d times, want 1", len(rc.deleteCalls))
	}
	if len(rc.deleteCalls[0]) != 6 {
		t.Fatalf("deleted %d keys, want 6: %v", len(rc.deleteCalls[0]), rc.deleteCalls[0])
	}
}

func TestInvalidateNoFlagsIsNoOp(t *testing.T) {
	rc := &recordingCache{}
	inv := NewInvalidator(rc)

	inv.Invalidate(context.Background(), Invalidation{UserID: "u1", OrderID: "o1"})
	if len(rc.deleteCalls) != 0 {
		t.Fatalf("delete should not be called, got %v", rc.deleteCalls)
	}
}

package integration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	catalogapp "github.com/developerabhi04/order-service/internal/catalog/application"
	catalogpg "github.com/developerabhi04/order-service/internal/catalog/infrastructure/postgres"
	"github.com/developerabhi04/order-service/internal/order/application"
	"github.com/developerabhi04/order-service/internal/order/domain"
	orderpg "github.com/developerabhi04/order-service/internal/order/infrastructure/postgres"
	"github.com/developerabhi04/order-service/pkg/cache"
)

// Runs only when INTEGRATION is set; needs a local Docker daemon.
func TestOrderLifecycleAgainstRealBackends(t *testing.T) {
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Fatalf("setup containers: %v", err)
	}
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	if err != nil {
		t.Fatalf("pg connect: %v", err)
	}
	defer pool.Close()

	opts, err := goredis.ParseURL(env.RedisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer rdb.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := orderpg.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if _, err := pool.Exec(ctx, `INSERT INTO users (id, name) VALUES ('u1', 'Abhi')`); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, price_cents, stock) VALUES ('p1', 'Widget', 100, 5)`); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	gateway := cache.NewRedis(log, rdb, time.Minute, nil)
	adjuster := catalogapp.NewAdjuster(log, catalogpg.NewRepository(log, pool))
	svc := application.NewService(log, repo, adjuster, gateway, cache.NewInvalidator(gateway))

	subtotal, tax, total := int64(200), int64(20), int64(220)
	err = svc.Place(ctx, application.PlaceInput{
		UserID:        "u1",
		ShippingInfo:  &domain.ShippingInfo{Address: "12 Main St", City: "Pune", State: "MH", Country: "IN", PinCode: "411001"},
		Items:         []domain.OrderItem{{ProductID: "p1", Name: "Widget", PriceCents: 100, Quantity: 2}},
		SubtotalCents: &subtotal,
		TaxCents:      &tax,
		TotalCents:    &total,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	var stock int64
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id='p1'`).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 3 {
		t.Fatalf("stock = %d, want 3", stock)
	}

	orders, err := svc.ListForUser(ctx, "u1")
	if err != nil || len(orders) != 1 {
		t.Fatalf("list: %v (%d orders)", err, len(orders))
	}
	id := orders[0].ID.String()

	got, err := svc.GetOne(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserName != "Abhi" {
		t.Fatalf("user name enrichment: %q", got.UserName)
	}

	if _, err := svc.Advance(ctx, id); err != nil {
		t.Fatalf("advance: %v", err)
	}
	got, err = svc.GetOne(ctx, id)
	if err != nil || got.Status != domain.StatusShipped {
		t.Fatalf("after advance: status=%q err=%v", got.Status, err)
	}

	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.GetOne(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/developerabhi04/order-service/internal/order/domain"
	"github.com/developerabhi04/order-service/pkg/outbox"
	"github.com/developerabhi04/order-service/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

//go:embed schema.sql
var schemaSQL string

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const orderColumns = `o.id, o.user_id, o.status,
	o.subtotal_cents, o.tax_cents, o.shipping_cents, o.discount_cents, o.total_cents,
	o.address, o.city, o.state, o.country, o.pin_code,
	o.created_at, o.updated_at`

func scanOrder(row pgx.Row, o *domain.Order, userName **string) error {
	return row.Scan(&o.ID, &o.UserID, &o.Status,
		&o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents,
		&o.ShippingInfo.Address, &o.ShippingInfo.City, &o.ShippingInfo.State,
		&o.ShippingInfo.Country, &o.ShippingInfo.PinCode,
		&o.CreatedAt, &o.UpdatedAt, userName)
}

func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`, u.name
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("find orders by user: %w", err)
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// FindAll returns every order, each enriched with the owning user's display
// name.
func (r *Repository) FindAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`, u.name
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("find all orders: %w", err)
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}

	var o domain.Order
	var userName *string
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`, u.name
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, orderID)
	if err := scanOrder(row, &o, &userName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("find order by id: %w", err)
	}
	if userName != nil {
		o.UserName = *userName
	}

	items, err := r.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// Create assigns identity and timestamps, persists the order with its line
// items, and records an OrderPlaced outbox event in the same transaction.
func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	o.ID = uuid.New()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
			(id, user_id, status,
			 subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
			 address, city, state, country, pin_code,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.ID, o.UserID, o.Status,
		o.SubtotalCents, o.TaxCents, o.ShippingCents, o.DiscountCents, o.TotalCents,
		o.ShippingInfo.Address, o.ShippingInfo.City, o.ShippingInfo.State,
		o.ShippingInfo.Country, o.ShippingInfo.PinCode,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, name, photo_url, price_cents, quantity)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Name, it.PhotoURL, it.PriceCents, it.Quantity)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	event := domain.OrderPlaced{
		OrderID:    o.ID.String(),
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		Items:      o.Items,
	}
	if err := r.queueEvent(ctx, tx, o.ID.String(), domain.EventOrderPlaced, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

// UpdateStatus persists a status mutation and records an OrderStatusChanged
// outbox event in the same transaction.
func (r *Repository) UpdateStatus(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin update status: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		o.ID, o.Status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.ID, domain.ErrNotFound)
	}

	event := domain.OrderStatusChanged{OrderID: o.ID.String(), UserID: o.UserID, Status: o.Status}
	if err := r.queueEvent(ctx, tx, o.ID.String(), domain.EventOrderStatusChanged, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update status: %w", err)
	}
	return nil
}

// Delete removes the order permanently, cascading to its line items, and
// records an OrderDeleted outbox event in the same transaction.
func (r *Repository) Delete(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete order: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, o.ID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.ID, domain.ErrNotFound)
	}

	event := domain.OrderDeleted{OrderID: o.ID.String(), UserID: o.UserID}
	if err := r.queueEvent(ctx, tx, o.ID.String(), domain.EventOrderDeleted, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}
	return nil
}

func (r *Repository) queueEvent(ctx context.Context, tx pgx.Tx, aggregateID, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ('order', $1, $2, $3, $4, 'pending')`,
		aggregateID, eventType, payload, carrier[tracing.TraceparentHeader])
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) collectOrders(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	var ids []uuid.UUID
	for rows.Next() {
		var o domain.Order
		var userName *string
		if err := scanOrder(rows, &o, &userName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if userName != nil {
			o.UserName = *userName
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, name, photo_url, price_cents, quantity
		FROM order_items
		WHERE order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID uuid.UUID
		var it domain.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.PhotoURL, &it.PriceCents, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// OutboxStore adapts the outbox table to the relay's Store interface.
type OutboxStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOutboxStore(log *slog.Logger, pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{log: log, pool: pool}
}

func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, type, payload, traceparent, created_at
		FROM outbox
		WHERE status = 'pending'
		   OR (status = 'in_progress' AND lease_until < now())
		ORDER BY id
		FOR UPDATE SKIP LOCKED
		LIMIT $1`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var ev outbox.Event
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.Type, &ev.Payload, &ev.Traceparent, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	_, err = tx.Exec(ctx, `
		UPDATE outbox
		SET status = 'in_progress', relay_id = $1, lease_until = now() + $2::interval
		WHERE id = ANY($3)`, relayID, lease.String(), ids)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET status='sent' WHERE id = ANY($1)`, ids)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE outbox SET status='failed', last_error=$2, retry_count=retry_count+1 WHERE id=$1`,
		id, errMsg)
	return err
}

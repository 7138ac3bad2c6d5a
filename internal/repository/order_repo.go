package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// ErrOrderExists signals that an order for the same external session id
// was already materialized. The webhook treats it as a successful replay.
var ErrOrderExists = errors.New("order already exists for this session")

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ExistsBySessionID reports whether an order was already created for the
// given external checkout session.
func (r *OrderRepository) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE stripe_session_id=$1)`
	if err := r.DB.QueryRow(ctx, query, sessionID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateFromWebhook inserts the order and its items in one transaction.
// The unique constraint on stripe_session_id is the idempotency guard:
// a concurrent duplicate insert loses the conflict and gets ErrOrderExists,
// so two retries of the same webhook can never race into two orders.
func (r *OrderRepository) CreateFromWebhook(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var addr model.Address
	if o.ShippingAddress != nil {
		addr = *o.ShippingAddress
	}

	insertOrder := `
		INSERT INTO orders
			(order_number, stripe_session_id, payment_intent, email, billing_name,
			 subtotal, total_amount, currency, payment_status, status,
			 shipping_line1, shipping_line2, shipping_city, shipping_state,
			 shipping_postal_code, shipping_country)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (stripe_session_id) DO NOTHING
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertOrder,
		o.OrderNumber, o.StripeSessionID, o.PaymentIntent, o.Email, o.BillingName,
		o.Subtotal, o.TotalAmount, o.Currency, o.PaymentStatus, o.Status,
		addr.Line1, addr.Line2, addr.City, addr.State, addr.PostalCode, addr.Country,
	).Scan(&o.ID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderExists
	}
	if err != nil {
		return err
	}

	insertItem := `
		INSERT INTO order_items
			(order_id, package_id, product_name, product_type, quantity, unit_price, total_price)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRow(ctx, insertItem,
			o.ID, it.PackageID, it.ProductName, it.ProductType,
			it.Quantity, it.UnitPrice, it.TotalPrice,
		).Scan(&it.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByOrderNumber returns the order and its items
func (r *OrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `
		SELECT id, order_number, COALESCE(stripe_session_id, ''), COALESCE(payment_intent, ''),
		       email, COALESCE(billing_name, ''), subtotal, total_amount, currency,
		       payment_status, status, created_at
		FROM orders WHERE order_number=$1
	`
	var o model.Order
	if err := r.DB.QueryRow(ctx, query, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.StripeSessionID, &o.PaymentIntent,
		&o.Email, &o.BillingName, &o.Subtotal, &o.TotalAmount, &o.Currency,
		&o.PaymentStatus, &o.Status, &o.CreatedAt,
	); err != nil {
		return nil, err
	}

	items := `
		SELECT id, order_id, COALESCE(package_id::text, ''), product_name, product_type,
		       quantity, unit_price, total_price
		FROM order_items WHERE order_id=$1 ORDER BY created_at
	`
	rows, err := r.DB.Query(ctx, items, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PackageID, &it.ProductName,
			&it.ProductType, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// ListPaidBetween returns paid orders created in [from, to), newest first.
func (r *OrderRepository) ListPaidBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	query := `
		SELECT id, order_number, email, total_amount, currency, payment_status, status, created_at
		FROM orders
		WHERE payment_status='paid' AND created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`
	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Email, &o.TotalAmount,
			&o.Currency, &o.PaymentStatus, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

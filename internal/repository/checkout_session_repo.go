package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// CheckoutSessionRepository stores the best-effort shadow copies of
// processor-hosted checkout sessions. Callers treat every write here as
// advisory; a failure never blocks checkout or fulfillment.
type CheckoutSessionRepository struct {
	DB *pgxpool.Pool
}

func NewCheckoutSessionRepository(db *pgxpool.Pool) *CheckoutSessionRepository {
	return &CheckoutSessionRepository{DB: db}
}

// UpsertPending records a freshly created session. Re-running for the
// same session id just refreshes the row.
func (r *CheckoutSessionRepository) UpsertPending(ctx context.Context, s *model.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions
			(session_id, customer_email, amount_total, currency, metadata, status, payment_status, test_mode)
		VALUES ($1, $2, $3, $4, $5, 'open', 'pending', $6)
		ON CONFLICT (session_id) DO UPDATE
		SET customer_email=EXCLUDED.customer_email,
		    amount_total=EXCLUDED.amount_total,
		    currency=EXCLUDED.currency,
		    metadata=EXCLUDED.metadata,
		    updated_at=now()
	`
	_, err := r.DB.Exec(ctx, query,
		s.SessionID, s.CustomerEmail, s.AmountTotal, s.Currency, s.Metadata, s.TestMode)
	return err
}

// MarkComplete flips the shadow record after the processor reports the
// payment completed.
func (r *CheckoutSessionRepository) MarkComplete(ctx context.Context, sessionID, paymentIntent string, amountTotal float64) error {
	query := `
		INSERT INTO checkout_sessions
			(session_id, customer_email, amount_total, payment_intent, status, payment_status)
		VALUES ($1, '', $2, $3, 'complete', 'paid')
		ON CONFLICT (session_id) DO UPDATE
		SET payment_intent=EXCLUDED.payment_intent,
		    amount_total=EXCLUDED.amount_total,
		    status='complete',
		    payment_status='paid',
		    updated_at=now()
	`
	_, err := r.DB.Exec(ctx, query, sessionID, amountTotal, paymentIntent)
	return err
}

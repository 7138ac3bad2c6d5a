package services

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v76"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// GatewayLineItem is one processor line item, with the amount already in
// minor currency units.
type GatewayLineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// GatewaySessionParams is everything the processor needs to host a
// checkout session.
type GatewaySessionParams struct {
	LineItems     []GatewayLineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// GatewaySession is the processor's answer: an opaque id and the hosted
// payment page URL.
type GatewaySession struct {
	ID  string
	URL string
}

// SessionItem is a line item of a retrieved session.
type SessionItem struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// SessionDetails is the order-details view of a hosted session, shown on
// the success page.
type SessionDetails struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        string        `json:"status"`
	CustomerEmail string        `json:"customerEmail"`
	Items         []SessionItem `json:"items"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// PaymentGateway is the outbound payment-processor API surface.
// RetrieveCheckoutSession returns the processor's raw session with the
// payment intent expanded; verification and recovery need the full
// payment state, not the order-details view.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params *GatewaySessionParams) (*GatewaySession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionDetails, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

// OrderStore is the authoritative order persistence surface.
type OrderStore interface {
	ExistsBySessionID(ctx context.Context, sessionID string) (bool, error)
	CreateFromWebhook(ctx context.Context, o *model.Order) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// SessionStore holds the best-effort shadow session records.
type SessionStore interface {
	UpsertPending(ctx context.Context, s *model.CheckoutSession) error
	MarkComplete(ctx context.Context, sessionID, paymentIntent string, amountTotal float64) error
}

// StockStore is the package inventory surface.
type StockStore interface {
	Levels(ctx context.Context) ([]model.PackageStock, error)
	Add(ctx context.Context, packageID string, qty int) (int, error)
	Subtract(ctx context.Context, packageID string, qty int) (int, error)
	Set(ctx context.Context, packageID string, qty int) (int, error)
	SubtractByProduct(ctx context.Context, name, productType string, qty int) (int, error)
}

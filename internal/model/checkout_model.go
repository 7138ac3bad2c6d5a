package model

import "time"

// Address is a structured postal address. Line1, City, State, PostalCode
// and Country are required for checkout.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CustomerInfo is what the storefront collects before handing off to the
// payment processor.
type CustomerInfo struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Address   Address `json:"address"`
}

func (ci CustomerInfo) FullName() string {
	return ci.FirstName + " " + ci.LastName
}

// CheckoutSession is the shadow record of a processor-hosted session.
// The processor owns the real state; this copy is best-effort and only
// used for auditing and reconciliation.
type CheckoutSession struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	CustomerEmail string    `json:"customer_email"`
	AmountTotal   float64   `json:"amount_total"`
	Currency      string    `json:"currency"`
	PaymentIntent string    `json:"payment_intent,omitempty"`
	Status        string    `json:"status"` // open | complete | expired
	PaymentStatus string    `json:"payment_status"`
	Metadata      []byte    `json:"metadata,omitempty"`
	TestMode      bool      `json:"test_mode"`
	CreatedAt     time.Time `json:"created_at"`
}

// ManifestItem is the compact per-item record embedded in the session
// metadata so the webhook can rebuild order lines without trusting the
// client again.
type ManifestItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"price"`
}

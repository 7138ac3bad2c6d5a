package services

import (
	"context"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// OrderEmailItem is one line of an order email.
type OrderEmailItem struct {
	Name     string
	Quantity int
	Amount   string
}

// OrderEmail is the data both the customer confirmation and the admin
// notification are rendered from.
type OrderEmail struct {
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	Total           string
	Currency        string
	Items           []OrderEmailItem
	ShippingAddress *model.Address
	PaymentIntent   string
}

// PaymentFailureEmail is the data for the admin payment-failure alert.
type PaymentFailureEmail struct {
	PaymentIntentID string
	CustomerEmail   string
	Amount          string
	Currency        string
	Reason          string
}

// Mailer sends transactional email. Every send is best-effort from the
// webhook's point of view.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, data OrderEmail) error
	SendAdminOrderNotification(ctx context.Context, data OrderEmail) error
	SendPaymentFailureAlert(ctx context.Context, data PaymentFailureEmail) error
}

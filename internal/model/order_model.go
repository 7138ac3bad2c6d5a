package model

import "time"

// Payment status values for an order
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order status values
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is the authoritative record of a completed payment. Created
// exactly once per payment event, never deleted, only status-transitioned.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"order_number"`
	StripeSessionID string      `json:"stripe_session_id,omitempty"`
	PaymentIntent   string      `json:"payment_intent,omitempty"`
	Email           string      `json:"email"`
	BillingName     string      `json:"billing_name,omitempty"`
	Subtotal        float64     `json:"subtotal"`
	TotalAmount     float64     `json:"total_amount"`
	Currency        string      `json:"currency"`
	PaymentStatus   string      `json:"payment_status"`
	Status          string      `json:"status"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderItem is owned by exactly one Order and created atomically with it.
type OrderItem struct {
	ID          string  `json:"id,omitempty"`
	OrderID     string  `json:"order_id,omitempty"`
	PackageID   string  `json:"package_id,omitempty"`
	ProductName string  `json:"product_name"`
	ProductType string  `json:"product_type"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// DefaultGatewayTimeout bounds every outbound call to the payment
// processor.
const DefaultGatewayTimeout = 15 * time.Second

// CheckoutRequest is the inbound payload for checkout initiation.
type CheckoutRequest struct {
	Items        []model.CartItem   `json:"items"`
	CustomerInfo model.CustomerInfo `json:"customerInfo"`
}

// CheckoutResponse carries the processor-hosted payment page.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CheckoutService struct {
	Gateway        PaymentGateway
	Sessions       SessionStore
	EmailValidator EmailValidator
	Log            *slog.Logger
	SuccessURL     string
	CancelURL      string
	Timeout        time.Duration
}

func NewCheckoutService(
	gw PaymentGateway,
	sessions SessionStore,
	emailValidator EmailValidator,
	log *slog.Logger,
	successURL, cancelURL string,
) *CheckoutService {
	return &CheckoutService{
		Gateway:        gw,
		Sessions:       sessions,
		EmailValidator: emailValidator,
		Log:            log,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		Timeout:        DefaultGatewayTimeout,
	}
}

// CreateSession validates the cart locally, asks the processor for a
// hosted session and writes an advisory shadow record. Only the local
// validation and the processor call can fail the operation.
func (s *CheckoutService) CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	orderNumber := newOrderNumber()
	manifest := make([]model.ManifestItem, 0, len(req.Items))
	lineItems := make([]GatewayLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		lineItems = append(lineItems, GatewayLineItem{
			Name:        it.ProductName,
			Description: it.ProductName + " - Premium gut health supplement",
			UnitAmount:  toMinorUnits(it.UnitPrice),
			Quantity:    int64(it.Quantity),
		})
		manifest = append(manifest, model.ManifestItem{
			ID:        it.ID,
			Name:      it.ProductName,
			Type:      it.ProductType,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	manifestJSON, _ := json.Marshal(manifest)
	addressJSON, _ := json.Marshal(req.CustomerInfo.Address)

	// The processor is the only source of truth for this order until the
	// webhook lands, so everything needed to rebuild it rides along as
	// metadata.
	params := &GatewaySessionParams{
		LineItems:     lineItems,
		CustomerEmail: req.CustomerInfo.Email,
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
		Metadata: map[string]string{
			"order_number":     orderNumber,
			"customer_name":    req.CustomerInfo.FullName(),
			"customer_email":   req.CustomerInfo.Email,
			"shipping_address": string(addressJSON),
			"items":            string(manifestJSON),
		},
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	sess, err := s.Gateway.CreateCheckoutSession(cctx, params)
	if err != nil {
		s.Log.Error("checkout session creation failed",
			"order_number", orderNumber, "error", err)
		return nil, checkoutFailed(err)
	}

	// Advisory shadow write. The external session already exists, so a
	// failure here is logged and swallowed; retrying would mint a
	// duplicate session.
	metadata, _ := json.Marshal(params.Metadata)
	shadow := &model.CheckoutSession{
		SessionID:     sess.ID,
		CustomerEmail: req.CustomerInfo.Email,
		AmountTotal:   cartTotal(req.Items),
		Currency:      "USD",
		Metadata:      metadata,
	}
	if err := s.Sessions.UpsertPending(ctx, shadow); err != nil {
		s.Log.Warn("could not save shadow checkout session",
			"session_id", sess.ID, "error", err)
	}

	return &CheckoutResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

// GetSessionDetails returns the order-details view for the success page.
func (s *CheckoutService) GetSessionDetails(ctx context.Context, sessionID string) (*SessionDetails, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	details, err := s.Gateway.RetrieveSession(cctx, sessionID)
	if err != nil {
		s.Log.Error("checkout session lookup failed", "session_id", sessionID, "error", err)
		return nil, sessionLookupFailed(err)
	}
	return details, nil
}

func (s *CheckoutService) validate(ctx context.Context, req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range req.Items {
		if it.ID == "" || it.ProductName == "" || it.Quantity < 1 || it.UnitPrice <= 0 {
			return ErrInvalidCartItem
		}
	}

	ci := req.CustomerInfo
	if _, err := mail.ParseAddress(ci.Email); err != nil {
		return ErrInvalidCustomerInfo
	}
	if ci.FirstName == "" || ci.LastName == "" {
		return ErrInvalidCustomerInfo
	}
	a := ci.Address
	if a.Line1 == "" || a.City == "" || a.State == "" || a.PostalCode == "" || a.Country == "" {
		return ErrInvalidCustomerInfo
	}

	if s.EmailValidator != nil {
		if err := s.EmailValidator.Validate(ctx, ci.Email); err != nil {
			return customerInfoRejected(err)
		}
	}
	return nil
}

func (s *CheckoutService) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultGatewayTimeout
}

// toMinorUnits converts a dollar price to cents, rounded to the nearest
// integer.
func toMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

func cartTotal(items []model.CartItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(
			decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

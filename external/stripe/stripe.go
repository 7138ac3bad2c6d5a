package stripe

import (
	"context"
	"errors"
	"os"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

// Client wraps the Stripe API for hosted checkout sessions and webhook
// signature verification.
type Client struct {
	api           *client.API
	webhookSecret string
}

var _ services.PaymentGateway = (*Client)(nil)

func NewClient() (*Client, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, errors.New("STRIPE_SECRET_KEY not set")
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET not set")
	}

	api := &client.API{}
	api.Init(key, nil)

	return &Client{
		api:           api,
		webhookSecret: secret,
	}, nil
}

func (c *Client) CreateCheckoutSession(
	ctx context.Context,
	params *services.GatewaySessionParams,
) (*services.GatewaySession, error) {

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, it := range params.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(it.Description),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		CustomerEmail: stripe.String(params.CustomerEmail),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US", "CA"}),
		},
		BillingAddressCollection: stripe.String("required"),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		AllowPromotionCodes: stripe.Bool(true),
	}
	sp.Context = ctx
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(sp)
	if err != nil {
		return nil, err
	}

	return &services.GatewaySession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

func (c *Client) RetrieveSession(
	ctx context.Context,
	sessionID string,
) (*services.SessionDetails, error) {

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, err
	}

	details := &services.SessionDetails{
		ID:            sess.ID,
		OrderNumber:   sess.Metadata["order_number"],
		Amount:        sess.AmountTotal,
		Currency:      string(sess.Currency),
		Status:        string(sess.Status),
		CustomerEmail: sess.CustomerEmail,
		CreatedAt:     time.Unix(sess.Created, 0).UTC(),
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		details.Status = "confirmed"
	}
	if details.CustomerEmail == "" && sess.CustomerDetails != nil {
		details.CustomerEmail = sess.CustomerDetails.Email
	}
	if details.OrderNumber == "" {
		details.OrderNumber = sess.ID
	}

	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			details.Items = append(details.Items, services.SessionItem{
				Name:     li.Description,
				Quantity: li.Quantity,
				Price:    float64(li.AmountTotal) / 100,
			})
		}
	}

	return details, nil
}

// RetrieveCheckoutSession returns the raw session with its payment
// intent expanded, so callers can inspect the full payment state.
func (c *Client) RetrieveCheckoutSession(
	ctx context.Context,
	sessionID string,
) (*stripe.CheckoutSession, error) {

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	return c.api.CheckoutSessions.Get(sessionID, params)
}

// ConstructEvent verifies the webhook signature and parses the event.
// API version mismatches between the SDK pin and the account are
// tolerated; the payload fields we read are stable.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}

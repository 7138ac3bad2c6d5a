package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

func validCheckoutRequest() *CheckoutRequest {
	return &CheckoutRequest{
		Items: []model.CartItem{
			{
				ID:          "11111111-1111-4111-8111-111111111111",
				ProductName: "Total Essential",
				ProductType: model.ProductTypeEssential,
				Quantity:    2,
				UnitPrice:   79.99,
			},
			{
				ID:          "22222222-2222-4222-8222-222222222222",
				ProductName: "Total Essential Plus",
				ProductType: model.ProductTypeEssentialPlus,
				Quantity:    1,
				UnitPrice:   84.99,
			},
		},
		CustomerInfo: model.CustomerInfo{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Address: model.Address{
				Line1:      "123 Main St",
				City:       "Vancouver",
				State:      "BC",
				PostalCode: "V5K 0A1",
				Country:    "CA",
			},
		},
	}
}

func newTestCheckoutService(gw *MockGateway, sessions *MockSessionStore) *CheckoutService {
	return NewCheckoutService(gw, sessions, nil, testLogger(),
		"https://shop.example.com/success", "https://shop.example.com/cart")
}

func TestCreateSession_Success(t *testing.T) {
	gw := &MockGateway{Session: &GatewaySession{ID: "cs_test_123", URL: "https://pay.example.com/cs_test_123"}}
	sessions := &MockSessionStore{}
	svc := newTestCheckoutService(gw, sessions)

	resp, err := svc.CreateSession(context.Background(), validCheckoutRequest())

	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", resp.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_test_123", resp.URL)

	require.NotNil(t, gw.CapturedArgs)
	require.Len(t, gw.CapturedArgs.LineItems, 2)
	assert.Equal(t, int64(7999), gw.CapturedArgs.LineItems[0].UnitAmount)
	assert.Equal(t, int64(2), gw.CapturedArgs.LineItems[0].Quantity)
	assert.Equal(t, "jane@example.com", gw.CapturedArgs.CustomerEmail)
}

func TestCreateSession_MetadataCarriesOrderManifest(t *testing.T) {
	gw := &MockGateway{Session: &GatewaySession{ID: "cs_test_123"}}
	svc := newTestCheckoutService(gw, &MockSessionStore{})

	_, err := svc.CreateSession(context.Background(), validCheckoutRequest())
	require.NoError(t, err)

	meta := gw.CapturedArgs.Metadata
	assert.NotEmpty(t, meta["order_number"])
	assert.Equal(t, "Jane Doe", meta["customer_name"])
	assert.Equal(t, "jane@example.com", meta["customer_email"])

	var manifest []model.ManifestItem
	require.NoError(t, json.Unmarshal([]byte(meta["items"]), &manifest))
	require.Len(t, manifest, 2)
	assert.Equal(t, "Total Essential", manifest[0].Name)
	assert.Equal(t, 2, manifest[0].Quantity)
	assert.Equal(t, 79.99, manifest[0].UnitPrice)

	var addr model.Address
	require.NoError(t, json.Unmarshal([]byte(meta["shipping_address"]), &addr))
	assert.Equal(t, "Vancouver", addr.City)
}

func TestCreateSession_EmptyCartRejectedBeforeGatewayCall(t *testing.T) {
	gw := &MockGateway{}
	svc := newTestCheckoutService(gw, &MockSessionStore{})

	req := validCheckoutRequest()
	req.Items = nil

	_, err := svc.CreateSession(context.Background(), req)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, gw.CreateCalls)
}

func TestCreateSession_InvalidItemRejected(t *testing.T) {
	svc := newTestCheckoutService(&MockGateway{}, &MockSessionStore{})

	req := validCheckoutRequest()
	req.Items[0].Quantity = 0

	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCartItem)

	req = validCheckoutRequest()
	req.Items[1].UnitPrice = 0
	_, err = svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCartItem)
}

func TestCreateSession_InvalidCustomerInfoRejected(t *testing.T) {
	svc := newTestCheckoutService(&MockGateway{}, &MockSessionStore{})

	req := validCheckoutRequest()
	req.CustomerInfo.Email = "not-an-email"
	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCustomerInfo)

	req = validCheckoutRequest()
	req.CustomerInfo.Address.PostalCode = ""
	_, err = svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCustomerInfo)
}

func TestCreateSession_GatewayFailureIsSanitized(t *testing.T) {
	gw := &MockGateway{Err: errors.New("stripe: api_key sk_live_abc123 rejected")}
	svc := newTestCheckoutService(gw, &MockSessionStore{})

	_, err := svc.CreateSession(context.Background(), validCheckoutRequest())

	ce := AsCoded(err)
	require.NotNil(t, ce)
	assert.Equal(t, "CHECKOUT_SESSION_FAILED", ce.Code)
	assert.Equal(t, KindUpstream, ce.Kind)
	assert.NotContains(t, ce.Message, "sk_live")
}

func TestCreateSession_ShadowWriteFailureDoesNotFailCheckout(t *testing.T) {
	gw := &MockGateway{Session: &GatewaySession{ID: "cs_test_123", URL: "https://pay.example.com"}}
	sessions := &MockSessionStore{UpsertErr: errors.New("db down")}
	svc := newTestCheckoutService(gw, sessions)

	resp, err := svc.CreateSession(context.Background(), validCheckoutRequest())

	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", resp.SessionID)
}

func TestCreateSession_ShadowRecordTotals(t *testing.T) {
	gw := &MockGateway{Session: &GatewaySession{ID: "cs_test_123"}}
	sessions := &MockSessionStore{}
	svc := newTestCheckoutService(gw, sessions)

	_, err := svc.CreateSession(context.Background(), validCheckoutRequest())
	require.NoError(t, err)

	require.Len(t, sessions.Pending, 1)
	// 2*79.99 + 84.99
	assert.InDelta(t, 244.97, sessions.Pending[0].AmountTotal, 0.001)
	assert.Equal(t, "jane@example.com", sessions.Pending[0].CustomerEmail)
}

func TestCreateSession_EmailValidatorRejection(t *testing.T) {
	gw := &MockGateway{}
	svc := newTestCheckoutService(gw, &MockSessionStore{})
	svc.EmailValidator = rejectingValidator{}

	_, err := svc.CreateSession(context.Background(), validCheckoutRequest())

	ce := AsCoded(err)
	require.NotNil(t, ce)
	assert.Equal(t, "INVALID_CUSTOMER_INFO", ce.Code)
	assert.Equal(t, 0, gw.CreateCalls)
}

type rejectingValidator struct{}

func (rejectingValidator) Validate(context.Context, string) error {
	return errors.New("disposable email is not allowed")
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(7999), toMinorUnits(79.99))
	assert.Equal(t, int64(10), toMinorUnits(0.1))
	assert.Equal(t, int64(2997), toMinorUnits(29.97))
}

func TestNewOrderNumberShape(t *testing.T) {
	a := newOrderNumber()
	b := newOrderNumber()

	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{9}$`, a)
	assert.NotEqual(t, a, b)
}

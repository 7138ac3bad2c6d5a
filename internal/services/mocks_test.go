package services

import (
	"context"
	"log/slog"
	"time"

	stripe "github.com/stripe/stripe-go/v76"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	Session      *GatewaySession
	Details      *SessionDetails
	RawSession   *stripe.CheckoutSession
	Err          error
	CreateCalls  int
	CapturedArgs *GatewaySessionParams
}

func (m *MockGateway) CreateCheckoutSession(_ context.Context, params *GatewaySessionParams) (*GatewaySession, error) {
	m.CreateCalls++
	m.CapturedArgs = params
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *MockGateway) RetrieveSession(_ context.Context, _ string) (*SessionDetails, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Details, nil
}

func (m *MockGateway) RetrieveCheckoutSession(_ context.Context, _ string) (*stripe.CheckoutSession, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.RawSession, nil
}

// MockOrderStore implements OrderStore for testing
type MockOrderStore struct {
	Existing    map[string]bool
	CreateErr   error
	Created     []*model.Order
	Order       *model.Order
	GetErr      error
	PaidOrders  []model.Order
	ListErr     error
	ExistsCalls int
}

func (m *MockOrderStore) ExistsBySessionID(_ context.Context, sessionID string) (bool, error) {
	m.ExistsCalls++
	return m.Existing[sessionID], nil
}

func (m *MockOrderStore) CreateFromWebhook(_ context.Context, o *model.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, o)
	if m.Existing == nil {
		m.Existing = map[string]bool{}
	}
	m.Existing[o.StripeSessionID] = true
	return nil
}

func (m *MockOrderStore) GetByOrderNumber(_ context.Context, _ string) (*model.Order, error) {
	return m.Order, m.GetErr
}

func (m *MockOrderStore) ListPaidBetween(_ context.Context, _, _ time.Time) ([]model.Order, error) {
	return m.PaidOrders, m.ListErr
}

// MockSessionStore implements SessionStore for testing
type MockSessionStore struct {
	UpsertErr    error
	CompleteErr  error
	Pending      []*model.CheckoutSession
	CompletedIDs []string
}

func (m *MockSessionStore) UpsertPending(_ context.Context, s *model.CheckoutSession) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Pending = append(m.Pending, s)
	return nil
}

func (m *MockSessionStore) MarkComplete(_ context.Context, sessionID, _ string, _ float64) error {
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	m.CompletedIDs = append(m.CompletedIDs, sessionID)
	return nil
}

// subtractCall records one stock decrement for assertions
type subtractCall struct {
	Name string
	Type string
	Qty  int
}

// MockStockStore implements StockStore for testing
type MockStockStore struct {
	Stocks       []model.PackageStock
	LevelsErr    error
	OpErr        map[string]error // keyed by package id
	ProductErr   error
	NewQty       int
	Subtractions []subtractCall
}

func (m *MockStockStore) Levels(_ context.Context) ([]model.PackageStock, error) {
	return m.Stocks, m.LevelsErr
}

func (m *MockStockStore) Add(_ context.Context, packageID string, _ int) (int, error) {
	if err := m.OpErr[packageID]; err != nil {
		return 0, err
	}
	return m.NewQty, nil
}

func (m *MockStockStore) Subtract(_ context.Context, packageID string, _ int) (int, error) {
	if err := m.OpErr[packageID]; err != nil {
		return 0, err
	}
	return m.NewQty, nil
}

func (m *MockStockStore) Set(_ context.Context, packageID string, qty int) (int, error) {
	if err := m.OpErr[packageID]; err != nil {
		return 0, err
	}
	return qty, nil
}

func (m *MockStockStore) SubtractByProduct(_ context.Context, name, productType string, qty int) (int, error) {
	m.Subtractions = append(m.Subtractions, subtractCall{Name: name, Type: productType, Qty: qty})
	if m.ProductErr != nil {
		return 0, m.ProductErr
	}
	return m.NewQty, nil
}

// MockMailer implements Mailer for testing
type MockMailer struct {
	Confirmations []OrderEmail
	AdminNotices  []OrderEmail
	FailureAlerts []PaymentFailureEmail
	Err           error
}

func (m *MockMailer) SendOrderConfirmation(_ context.Context, data OrderEmail) error {
	if m.Err != nil {
		return m.Err
	}
	m.Confirmations = append(m.Confirmations, data)
	return nil
}

func (m *MockMailer) SendAdminOrderNotification(_ context.Context, data OrderEmail) error {
	if m.Err != nil {
		return m.Err
	}
	m.AdminNotices = append(m.AdminNotices, data)
	return nil
}

func (m *MockMailer) SendPaymentFailureAlert(_ context.Context, data PaymentFailureEmail) error {
	if m.Err != nil {
		return m.Err
	}
	m.FailureAlerts = append(m.FailureAlerts, data)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
)

// Freshness windows for verification and recovery requests. Anything
// older is treated as a replay.
const (
	VerifyRequestMaxAge  = 5 * time.Minute
	RecoverRequestMaxAge = 10 * time.Minute

	// MaxRecoveryRetries caps client-driven recovery attempts per session
	MaxRecoveryRetries = 5
)

// Transaction status values reported to the success page.
const (
	TxStatusPending        = "pending"
	TxStatusSucceeded      = "succeeded"
	TxStatusFailed         = "failed"
	TxStatusCanceled       = "canceled"
	TxStatusRequiresAction = "requires_action"
)

// VerifyRequest asks whether a checkout session really is what the
// client believes it paid. Amount is in minor units; Timestamp in unix
// milliseconds.
type VerifyRequest struct {
	SessionID      string `json:"sessionId" validate:"required"`
	ExpectedAmount int64  `json:"expectedAmount" validate:"gte=0"`
	CustomerEmail  string `json:"customerEmail" validate:"required,email"`
	Timestamp      int64  `json:"timestamp" validate:"gt=0"`
}

// TransactionView is the client-facing summary of a payment.
type TransactionView struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customerEmail"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type VerifyResult struct {
	IsValid       bool             `json:"isValid"`
	Status        string           `json:"status"`
	Transaction   *TransactionView `json:"transaction"`
	Discrepancies []string         `json:"discrepancies,omitempty"`
	VerifiedAt    time.Time        `json:"verifiedAt"`
}

// RecoverRequest asks the service to reconcile a session whose outcome
// the client lost, typically because the redirect or webhook never
// landed.
type RecoverRequest struct {
	SessionID      string `json:"sessionId" validate:"required"`
	CustomerEmail  string `json:"customerEmail" validate:"required,email"`
	ExpectedAmount int64  `json:"expectedAmount" validate:"gte=0"`
	CurrentStatus  string `json:"currentStatus" validate:"required,oneof=pending succeeded failed canceled requires_action"`
	RetryCount     int    `json:"retryCount" validate:"gte=0"`
	Timestamp      int64  `json:"timestamp" validate:"gt=0"`
}

type RecoverResult struct {
	Success        bool             `json:"success"`
	RequiresAction bool             `json:"requiresAction,omitempty"`
	ActionURL      string           `json:"actionUrl,omitempty"`
	Transaction    *TransactionView `json:"transaction,omitempty"`
	NextSteps      []string         `json:"nextSteps"`
	RetryCount     int              `json:"retryCount"`
	SessionID      string           `json:"sessionId"`
	RecoveredAt    time.Time        `json:"recoveredAt"`
}

// RecoveryService verifies completed checkouts and reconciles sessions
// the webhook never confirmed. When it finds a paid session with no
// order it materializes one through the same idempotent path the
// webhook uses.
type RecoveryService struct {
	Gateway PaymentGateway
	Webhook *WebhookService
	Log     *slog.Logger
	Timeout time.Duration
}

func NewRecoveryService(gw PaymentGateway, webhook *WebhookService, log *slog.Logger) *RecoveryService {
	return &RecoveryService{
		Gateway: gw,
		Webhook: webhook,
		Log:     log,
		Timeout: DefaultGatewayTimeout,
	}
}

// VerifyTransaction compares the client's view of a checkout against
// the processor's. Discrepancies make the result invalid but are
// reported, not hidden.
func (s *RecoveryService) VerifyTransaction(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	if age := time.Since(time.UnixMilli(req.Timestamp)); age > VerifyRequestMaxAge {
		return nil, requestExpired
	}

	sess, err := s.retrieveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	var discrepancies []string

	email := sessionEmail(sess)
	if !strings.EqualFold(email, req.CustomerEmail) {
		discrepancies = append(discrepancies, "customer email does not match")
	}

	// allow one minor unit of rounding slack
	if diff := sess.AmountTotal - req.ExpectedAmount; diff > 1 || diff < -1 {
		discrepancies = append(discrepancies,
			fmt.Sprintf("amount mismatch: expected %d, got %d", req.ExpectedAmount, sess.AmountTotal))
	}

	if sess.ExpiresAt > 0 && time.Unix(sess.ExpiresAt, 0).Before(time.Now()) && sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		discrepancies = append(discrepancies, "session has expired")
	}

	status := transactionStatus(sess)
	result := &VerifyResult{
		IsValid:       len(discrepancies) == 0,
		Status:        status,
		Transaction:   transactionView(sess, status, req.CustomerEmail),
		Discrepancies: discrepancies,
		VerifiedAt:    time.Now().UTC(),
	}
	s.Log.Info("transaction verified",
		"session_id", req.SessionID, "status", status, "valid", result.IsValid,
		"discrepancies", len(discrepancies))
	return result, nil
}

// RecoverPayment reconciles a lost checkout outcome. A paid session is
// pushed through the webhook's order materialization, which is a no-op
// when the webhook already landed.
func (s *RecoveryService) RecoverPayment(ctx context.Context, req *RecoverRequest) (*RecoverResult, error) {
	if age := time.Since(time.UnixMilli(req.Timestamp)); age > RecoverRequestMaxAge {
		return nil, requestExpired
	}
	if req.RetryCount >= MaxRecoveryRetries {
		return nil, &CodedError{
			Code: "RETRY_LIMIT_EXCEEDED", Kind: KindValidation,
			Message: fmt.Sprintf("at most %d recovery attempts are allowed per session", MaxRecoveryRetries),
		}
	}

	result := &RecoverResult{
		RetryCount:  req.RetryCount + 1,
		SessionID:   req.SessionID,
		RecoveredAt: time.Now().UTC(),
	}

	if req.CurrentStatus == TxStatusSucceeded {
		result.Success = true
		result.NextSteps = []string{"Payment has already been completed successfully"}
		return result, nil
	}

	sess, err := s.retrieveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if sess.Status == stripe.CheckoutSessionStatusComplete &&
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		// The payment landed but the client lost track of it. Make sure
		// the order exists; a duplicate is silently absorbed.
		if err := s.Webhook.ProcessCompletedSession(ctx, sess); err != nil {
			return nil, err
		}
		s.Log.Info("payment recovered from completed session", "session_id", sess.ID)
		result.Success = true
		result.Transaction = transactionView(sess, TxStatusSucceeded, req.CustomerEmail)
		result.NextSteps = []string{"Payment was already completed successfully"}
		return result, nil
	}

	if pi := sess.PaymentIntent; pi != nil && pi.Status != "" {
		s.recoverFromPaymentIntent(result, sess, pi, req.CustomerEmail)
		return result, nil
	}

	if sess.ExpiresAt > 0 && time.Unix(sess.ExpiresAt, 0).Before(time.Now()) {
		result.NextSteps = []string{
			"The checkout session has expired",
			"Please return to your cart and start checkout again",
		}
		return result, nil
	}

	result.NextSteps = []string{
		"The payment session is still active",
		"You can return to complete the payment",
		"Try a different payment method if the original failed",
	}
	return result, nil
}

func (s *RecoveryService) recoverFromPaymentIntent(result *RecoverResult, sess *stripe.CheckoutSession, pi *stripe.PaymentIntent, email string) {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		result.Success = true
		result.Transaction = transactionView(sess, TxStatusSucceeded, email)
		result.NextSteps = []string{"Payment has already been completed successfully"}

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		result.RequiresAction = true
		if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
			result.ActionURL = pi.NextAction.RedirectToURL.URL
		}
		result.NextSteps = []string{
			"Complete the required authentication with your bank",
			"Return to complete the payment process",
		}

	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		result.NextSteps = []string{
			"Please return to checkout and try a different payment method",
			"Verify your card details are correct",
		}

	case stripe.PaymentIntentStatusCanceled:
		result.NextSteps = []string{
			"The original payment has failed and cannot be recovered",
			"Please return to checkout to try again",
		}

	default:
		result.NextSteps = []string{
			"Payment recovery is not possible for this transaction",
			"Please start a new checkout process",
			"Contact support for assistance",
		}
	}
	s.Log.Info("payment intent recovery attempted",
		"session_id", sess.ID, "payment_intent", pi.ID, "pi_status", pi.Status,
		"success", result.Success)
}

func (s *RecoveryService) retrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	sess, err := s.Gateway.RetrieveCheckoutSession(cctx, sessionID)
	if err != nil {
		s.Log.Warn("session retrieval failed", "session_id", sessionID, "error", err)
		return nil, sessionNotFound(err)
	}
	return sess, nil
}

func (s *RecoveryService) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultGatewayTimeout
}

// transactionStatus maps the processor's session and payment intent
// state onto the client-facing status vocabulary.
func transactionStatus(sess *stripe.CheckoutSession) string {
	status := TxStatusPending
	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		status = TxStatusSucceeded
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		if sess.Status == stripe.CheckoutSessionStatusExpired {
			status = TxStatusCanceled
		}
	}

	if pi := sess.PaymentIntent; pi != nil {
		switch pi.Status {
		case stripe.PaymentIntentStatusSucceeded:
			status = TxStatusSucceeded
		case stripe.PaymentIntentStatusProcessing:
			status = TxStatusPending
		case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
			status = TxStatusRequiresAction
		case stripe.PaymentIntentStatusRequiresPaymentMethod:
			status = TxStatusFailed
		case stripe.PaymentIntentStatusCanceled:
			status = TxStatusCanceled
		}
	}
	return status
}

func transactionView(sess *stripe.CheckoutSession, status, fallbackEmail string) *TransactionView {
	id := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		id = sess.PaymentIntent.ID
	}
	email := sessionEmail(sess)
	if email == "" {
		email = fallbackEmail
	}
	currency := strings.ToUpper(string(sess.Currency))
	if currency == "" {
		currency = "USD"
	}
	return &TransactionView{
		ID:            id,
		SessionID:     sess.ID,
		Amount:        sess.AmountTotal,
		Currency:      currency,
		Status:        status,
		CustomerEmail: email,
		CreatedAt:     time.Unix(sess.Created, 0).UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.CustomerEmail
}

package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/repository"
)

// WebhookService finalizes orders from payment-processor events. By the
// time an event reaches it the signature is already verified; from here
// on every step must be safe to replay.
type WebhookService struct {
	Orders     OrderStore
	Sessions   SessionStore
	Stock      StockStore
	Mailer     Mailer
	Log        *slog.Logger
	AdminEmail string
}

func NewWebhookService(
	orders OrderStore,
	sessions SessionStore,
	stock StockStore,
	mailer Mailer,
	log *slog.Logger,
	adminEmail string,
) *WebhookService {
	return &WebhookService{
		Orders:     orders,
		Sessions:   sessions,
		Stock:      stock,
		Mailer:     mailer,
		Log:        log,
		AdminEmail: adminEmail,
	}
}

// HandleEvent routes a verified event. Unknown event types are
// acknowledged and ignored; returning an error makes the processor
// retry, so only the authoritative order write is allowed to fail.
func (s *WebhookService) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {

	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.Log.Error("could not parse checkout session payload",
				"event_id", event.ID, "error", err)
			// a malformed body will not get better on retry
			return nil
		}
		return s.ProcessCompletedSession(ctx, &sess)

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			s.Log.Error("could not parse payment intent payload",
				"event_id", event.ID, "error", err)
			return nil
		}
		s.alertPaymentFailed(ctx, &pi)
		return nil

	default:
		s.Log.Info("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

// ProcessCompletedSession materializes the order for a paid session.
// Safe to call more than once for the same session; the webhook and the
// payment-recovery path both use it.
func (s *WebhookService) ProcessCompletedSession(ctx context.Context, sess *stripe.CheckoutSession) error {
	// Fast path for redelivery. The unique constraint on the session id
	// is the real guard; this just skips the work.
	exists, err := s.Orders.ExistsBySessionID(ctx, sess.ID)
	if err == nil && exists {
		s.Log.Info("duplicate webhook delivery, order already recorded", "session_id", sess.ID)
		return nil
	}

	order := s.buildOrder(sess)

	if err := s.Orders.CreateFromWebhook(ctx, order); err != nil {
		if err == repository.ErrOrderExists {
			s.Log.Info("concurrent webhook delivery lost the insert race", "session_id", sess.ID)
			return nil
		}
		// The money has moved but we have no record. Fail the webhook so
		// the processor retries.
		s.Log.Error("order materialization failed", "session_id", sess.ID, "error", err)
		return orderPersistFailed(err)
	}
	s.Log.Info("order recorded",
		"order_number", order.OrderNumber, "session_id", sess.ID, "total", order.TotalAmount)

	s.decrementStock(ctx, order)

	if err := s.Sessions.MarkComplete(ctx, sess.ID, order.PaymentIntent, order.TotalAmount); err != nil {
		s.Log.Warn("could not mark shadow session complete", "session_id", sess.ID, "error", err)
	}

	s.notify(ctx, order, sess)
	return nil
}

// buildOrder reconstructs the order from the trusted webhook payload.
// The processor's amount is authoritative; the metadata manifest only
// supplies the line breakdown.
func (s *WebhookService) buildOrder(sess *stripe.CheckoutSession) *model.Order {
	total := fromMinorUnits(sess.AmountTotal)
	subtotal := total
	if sess.AmountSubtotal > 0 {
		subtotal = fromMinorUnits(sess.AmountSubtotal)
	}

	email := sess.CustomerEmail
	name := ""
	var shipping *model.Address
	if cd := sess.CustomerDetails; cd != nil {
		if email == "" {
			email = cd.Email
		}
		name = cd.Name
		if cd.Address != nil {
			shipping = &model.Address{
				Line1:      cd.Address.Line1,
				Line2:      cd.Address.Line2,
				City:       cd.Address.City,
				State:      cd.Address.State,
				PostalCode: cd.Address.PostalCode,
				Country:    cd.Address.Country,
			}
		}
	}
	meta := sess.Metadata
	if email == "" {
		email = meta["customer_email"]
	}
	if name == "" {
		name = meta["customer_name"]
	}
	if shipping == nil && meta["shipping_address"] != "" {
		var a model.Address
		if err := json.Unmarshal([]byte(meta["shipping_address"]), &a); err == nil {
			shipping = &a
		}
	}

	orderNumber := meta["order_number"]
	if orderNumber == "" {
		orderNumber = newOrderNumber()
	}

	paymentIntent := ""
	if sess.PaymentIntent != nil {
		paymentIntent = sess.PaymentIntent.ID
	}

	currency := strings.ToUpper(string(sess.Currency))
	if currency == "" {
		currency = "USD"
	}

	order := &model.Order{
		OrderNumber:     orderNumber,
		StripeSessionID: sess.ID,
		PaymentIntent:   paymentIntent,
		Email:           email,
		BillingName:     name,
		Subtotal:        subtotal,
		TotalAmount:     total,
		Currency:        currency,
		PaymentStatus:   model.PaymentStatusPaid,
		Status:          model.OrderStatusProcessing,
		ShippingAddress: shipping,
		Items:           s.itemsFromManifest(sess, total),
	}
	return order
}

// itemsFromManifest rebuilds order items from the session metadata. A
// mismatch between the manifest total and the captured amount is logged
// as a discrepancy only; payment already happened.
func (s *WebhookService) itemsFromManifest(sess *stripe.CheckoutSession, total float64) []model.OrderItem {
	var manifest []model.ManifestItem
	if raw := sess.Metadata["items"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &manifest); err != nil {
			s.Log.Warn("could not parse item manifest", "session_id", sess.ID, "error", err)
		}
	}

	if len(manifest) == 0 {
		// test events from the processor CLI carry no manifest
		return []model.OrderItem{{
			ProductName: "Order",
			ProductType: model.ProductTypeEssential,
			Quantity:    1,
			UnitPrice:   total,
			TotalPrice:  total,
		}}
	}

	items := make([]model.OrderItem, 0, len(manifest))
	sum := decimal.Zero
	for _, m := range manifest {
		lineTotal := decimal.NewFromFloat(m.UnitPrice).
			Mul(decimal.NewFromInt(int64(m.Quantity))).Round(2)
		sum = sum.Add(lineTotal)
		items = append(items, model.OrderItem{
			PackageID:   m.ID,
			ProductName: m.Name,
			ProductType: m.Type,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			TotalPrice:  lineTotal.InexactFloat64(),
		})
	}

	if !sum.Equal(decimal.NewFromFloat(total).Round(2)) {
		s.Log.Warn("manifest total does not match captured amount",
			"session_id", sess.ID,
			"manifest_total", sum.InexactFloat64(),
			"captured_total", total)
	}
	return items
}

// decrementStock adjusts inventory for each line. An oversell is an
// operational alert, not a transactional failure; the order stands.
func (s *WebhookService) decrementStock(ctx context.Context, order *model.Order) {
	for _, it := range order.Items {
		newQty, err := s.Stock.SubtractByProduct(ctx, it.ProductName, it.ProductType, it.Quantity)
		switch err {
		case nil:
			s.Log.Info("inventory updated",
				"product", it.ProductName, "quantity", it.Quantity, "stock", newQty)
		case repository.ErrInsufficientStock:
			s.Log.Warn("oversell: not enough stock to cover order",
				"order_number", order.OrderNumber, "product", it.ProductName, "quantity", it.Quantity)
		case repository.ErrPackageNotFound:
			s.Log.Warn("package not found for order item",
				"order_number", order.OrderNumber, "product", it.ProductName)
		default:
			s.Log.Warn("inventory update failed",
				"order_number", order.OrderNumber, "product", it.ProductName, "error", err)
		}
	}
}

func (s *WebhookService) notify(ctx context.Context, order *model.Order, sess *stripe.CheckoutSession) {
	data := OrderEmail{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.BillingName,
		CustomerEmail:   order.Email,
		Total:           formatAmount(order.TotalAmount),
		Currency:        order.Currency,
		ShippingAddress: order.ShippingAddress,
		PaymentIntent:   order.PaymentIntent,
	}
	if data.CustomerName == "" {
		data.CustomerName = "Customer"
	}
	for _, it := range order.Items {
		data.Items = append(data.Items, OrderEmailItem{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Amount:   formatAmount(it.TotalPrice),
		})
	}

	if err := s.Mailer.SendOrderConfirmation(ctx, data); err != nil {
		s.Log.Warn("customer confirmation email failed",
			"order_number", order.OrderNumber, "error", err)
	}
	if err := s.Mailer.SendAdminOrderNotification(ctx, data); err != nil {
		s.Log.Warn("admin notification email failed",
			"order_number", order.OrderNumber, "error", err)
	}
}

func (s *WebhookService) alertPaymentFailed(ctx context.Context, pi *stripe.PaymentIntent) {
	reason := "Payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	data := PaymentFailureEmail{
		PaymentIntentID: pi.ID,
		CustomerEmail:   pi.ReceiptEmail,
		Amount:          formatAmount(fromMinorUnits(pi.Amount)),
		Currency:        strings.ToUpper(string(pi.Currency)),
		Reason:          reason,
	}
	if err := s.Mailer.SendPaymentFailureAlert(ctx, data); err != nil {
		s.Log.Warn("payment failure alert email failed",
			"payment_intent", pi.ID, "error", err)
	}
}

func fromMinorUnits(amount int64) float64 {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).InexactFloat64()
}

func formatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

type ResendMailer struct {
	apiKey     string
	from       string
	adminEmail string
	client     *http.Client
	baseURL    string
}

var _ services.Mailer = (*ResendMailer)(nil)

func NewResendMailer(from, adminEmail string) (*ResendMailer, error) {
	key := os.Getenv("RESEND_API_KEY")
	if key == "" {
		return nil, errors.New("RESEND_API_KEY not set")
	}

	return &ResendMailer{
		apiKey:     key,
		from:       from,
		adminEmail: adminEmail,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendOrderConfirmation(
	ctx context.Context,
	data services.OrderEmail,
) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order, %s!</h2>", html.EscapeString(data.CustomerName))
	fmt.Fprintf(&b, "<p>Your order <strong>%s</strong> has been confirmed.</p>", html.EscapeString(data.OrderNumber))
	b.WriteString(itemsTable(data.Items))
	fmt.Fprintf(&b, "<p><strong>Total: $%s %s</strong></p>", data.Total, data.Currency)
	if a := data.ShippingAddress; a != nil {
		b.WriteString("<h3>Shipping to</h3><p>")
		b.WriteString(html.EscapeString(a.Line1))
		if a.Line2 != "" {
			b.WriteString("<br>" + html.EscapeString(a.Line2))
		}
		fmt.Fprintf(&b, "<br>%s, %s %s<br>%s</p>",
			html.EscapeString(a.City), html.EscapeString(a.State),
			html.EscapeString(a.PostalCode), html.EscapeString(a.Country))
	}
	b.WriteString("<p>We will email you again when your order ships.</p>")

	return m.send(ctx, data.CustomerEmail,
		"Order Confirmation - "+data.OrderNumber, b.String())
}

func (m *ResendMailer) SendAdminOrderNotification(
	ctx context.Context,
	data services.OrderEmail,
) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>New order %s</h2>", html.EscapeString(data.OrderNumber))
	fmt.Fprintf(&b, "<p>Customer: %s (%s)</p>",
		html.EscapeString(data.CustomerName), html.EscapeString(data.CustomerEmail))
	b.WriteString(itemsTable(data.Items))
	fmt.Fprintf(&b, "<p><strong>Total: $%s %s</strong></p>", data.Total, data.Currency)
	if data.PaymentIntent != "" {
		fmt.Fprintf(&b,
			`<p><a href="https://dashboard.stripe.com/payments/%s">View payment in Stripe</a></p>`,
			data.PaymentIntent)
	}

	return m.send(ctx, m.adminEmail,
		"New order received - "+data.OrderNumber, b.String())
}

func (m *ResendMailer) SendPaymentFailureAlert(
	ctx context.Context,
	data services.PaymentFailureEmail,
) error {
	var b strings.Builder
	b.WriteString("<h2>Payment failed</h2>")
	fmt.Fprintf(&b, "<p>Payment intent: %s</p>", html.EscapeString(data.PaymentIntentID))
	if data.CustomerEmail != "" {
		fmt.Fprintf(&b, "<p>Customer: %s</p>", html.EscapeString(data.CustomerEmail))
	}
	fmt.Fprintf(&b, "<p>Amount: $%s %s</p>", data.Amount, data.Currency)
	fmt.Fprintf(&b, "<p>Reason: %s</p>", html.EscapeString(data.Reason))

	return m.send(ctx, m.adminEmail,
		"Payment failure alert", b.String())
}

func itemsTable(items []services.OrderEmailItem) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	b.WriteString("<tr><th>Item</th><th>Qty</th><th>Amount</th></tr>")
	for _, it := range items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>$%s</td></tr>",
			html.EscapeString(it.Name), it.Quantity, it.Amount)
	}
	b.WriteString("</table>")
	return b.String()
}

func (m *ResendMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}

	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New(
			"failed to send email: " + buf.String(),
		)
	}

	return nil
}

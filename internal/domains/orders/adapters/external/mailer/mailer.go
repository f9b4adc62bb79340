package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	mailclient "github.com/Apurer/freshcart-api/internal/clients/http/mailer"
	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

const (
	DefaultFrom      = "FreshCart <no-reply@freshcart.com>"
	fallbackCustomer = "Valued Customer"
	fallbackAddress  = "No address provided"
	orderDateLayout  = "January 2, 2006"
)

var (
	_ ports.ConfirmationMailer = (*Mailer)(nil)
	_ ports.ConfirmationMailer = (*LogMailer)(nil)
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg mailclient.Message, opts ...mailclient.SendOption) error
}

// Rendered is a confirmation email ready to send.
type Rendered struct {
	Subject string
	HTML    string
}

// Renderer turns persisted orders into confirmation emails.
type Renderer struct {
	formatter *pricingdomain.Formatter
	storeURL  string
}

func NewRenderer(formatter *pricingdomain.Formatter, storeURL string) *Renderer {
	if formatter == nil {
		formatter = pricingdomain.MustFormatter("", "")
	}
	return &Renderer{formatter: formatter, storeURL: strings.TrimRight(strings.TrimSpace(storeURL), "/")}
}

// Subject returns "FreshCart Order Confirmation #<short id>".
func Subject(order *domain.Order) string {
	return "FreshCart Order Confirmation #" + order.ShortID()
}

type emailLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

type emailData struct {
	OrderNumber     string
	OrderDate       string
	CustomerName    string
	ShippingAddress string
	PaymentMethod   string
	OrderStatus     string
	Lines           []emailLine
	Subtotal        string
	Shipping        string
	Tax             string
	Total           string
	StoreURL        string
}

// Render builds the email from the amounts stored on the order.
func (r *Renderer) Render(email ports.ConfirmationEmail) (Rendered, error) {
	order := email.Order
	if order == nil {
		return Rendered{}, errors.New("confirmation requires an order")
	}
	data := emailData{
		OrderNumber:     order.ShortID(),
		OrderDate:       order.CreatedAt.Format(orderDateLayout),
		CustomerName:    orFallback(email.CustomerName, fallbackCustomer),
		ShippingAddress: orFallback(order.ShippingAddress, fallbackAddress),
		PaymentMethod:   checkoutdomain.PaymentMethod(order.PaymentMethod).Label(),
		OrderStatus:     order.Status.Label(),
		Subtotal:        r.formatter.Format(order.Subtotal),
		Shipping:        r.formatter.Format(order.Shipping),
		Tax:             r.formatter.Format(order.Tax),
		Total:           r.formatter.Format(order.Total),
		StoreURL:        r.storeURL,
	}
	for _, line := range order.Lines {
		data.Lines = append(data.Lines, emailLine{
			Name:      line.ProductName,
			Quantity:  line.Quantity,
			UnitPrice: r.formatter.Format(line.UnitPrice),
			Total:     r.formatter.Format(line.Total()),
		})
	}
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Rendered{Subject: Subject(order), HTML: buf.String()}, nil
}

// Mailer renders confirmations and hands them to the mail client.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	from     string
}

func New(sender Sender, renderer *Renderer, from string) *Mailer {
	if strings.TrimSpace(from) == "" {
		from = DefaultFrom
	}
	if renderer == nil {
		renderer = NewRenderer(nil, "")
	}
	return &Mailer{sender: sender, renderer: renderer, from: from}
}

// SendOrderConfirmation renders and sends. The order id doubles as the idempotency key.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, email ports.ConfirmationEmail) error {
	if m == nil || m.sender == nil {
		return errors.New("mailer not configured")
	}
	if strings.TrimSpace(email.CustomerEmail) == "" {
		return errors.New("customer email is required")
	}
	rendered, err := m.renderer.Render(email)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, mailclient.Message{
		From:    m.from,
		To:      []string{email.CustomerEmail},
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	}, mailclient.WithIdempotencyKey("order-confirmation-"+email.Order.ID))
}

// LogMailer renders confirmations and only logs them. Used when no mail API key is configured.
type LogMailer struct {
	renderer *Renderer
	logger   *slog.Logger
}

func NewLogMailer(renderer *Renderer, logger *slog.Logger) *LogMailer {
	if renderer == nil {
		renderer = NewRenderer(nil, "")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogMailer{renderer: renderer, logger: logger}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, email ports.ConfirmationEmail) error {
	rendered, err := m.renderer.Render(email)
	if err != nil {
		return err
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "order confirmation not sent, mailer disabled",
		slog.String("order.id", email.Order.ID),
		slog.String("email.to", email.CustomerEmail),
		slog.String("email.subject", rendered.Subject))
	return nil
}

func orFallback(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Your FreshCart Order Confirmation</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="color: #16a34a;">Thank you for your order!</h1>
  <p>Hi {{.CustomerName}},</p>
  <p>We've received your order and it's being processed.</p>
  <table style="width: 100%;">
    <tr><td><strong>Order number</strong></td><td>#{{.OrderNumber}}</td></tr>
    <tr><td><strong>Order date</strong></td><td>{{.OrderDate}}</td></tr>
    <tr><td><strong>Payment method</strong></td><td>{{.PaymentMethod}}</td></tr>
    <tr><td><strong>Status</strong></td><td>{{.OrderStatus}}</td></tr>
    <tr><td><strong>Shipping address</strong></td><td>{{.ShippingAddress}}</td></tr>
  </table>
  <table style="width: 100%; border-collapse: collapse; margin-top: 16px;">
    <thead><tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr></thead>
    <tbody>
    {{- range .Lines}}
      <tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.Total}}</td></tr>
    {{- end}}
    </tbody>
  </table>
  <table style="width: 100%; margin-top: 16px;">
    <tr><td>Subtotal</td><td align="right">{{.Subtotal}}</td></tr>
    <tr><td>Shipping</td><td align="right">{{.Shipping}}</td></tr>
    <tr><td>Tax</td><td align="right">{{.Tax}}</td></tr>
    <tr><td><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
  </table>
  {{- if .StoreURL}}
  <p><a href="{{.StoreURL}}" style="color: #16a34a;">Continue shopping</a></p>
  {{- end}}
</body>
</html>
`))

package ports

import (
	"context"

	cartdomain "github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
)

// User is the authenticated customer.
type User struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}

// ShippingProfile is written back to the customer's profile after checkout.
type ShippingProfile struct {
	FullName string
	Phone    string
	Street   string
	City     string
	State    string
	ZipCode  string
}

// ProfileWriter stores the shipping profile. Failures never block an order.
type ProfileWriter interface {
	SyncShippingProfile(ctx context.Context, userID string, profile ShippingProfile) error
}

// Cart is the live cart an order is placed from.
type Cart interface {
	Lines() []cartdomain.Line
	ClearCart(ctx context.Context)
}

// ConfirmationEmail is what the mailer needs to render a confirmation.
type ConfirmationEmail struct {
	Order         *domain.Order
	CustomerName  string
	CustomerEmail string
}

// ConfirmationMailer sends order confirmation emails.
type ConfirmationMailer interface {
	SendOrderConfirmation(ctx context.Context, email ConfirmationEmail) error
}

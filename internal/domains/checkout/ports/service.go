package ports

import (
	"context"

	"github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
)

// Service exposes the checkout flow to transports.
type Service interface {
	Begin(ctx context.Context, user *User) (*domain.Flow, error)
	Current(ctx context.Context, user *User) (*domain.Flow, error)
	SubmitAddress(ctx context.Context, user *User, details domain.ShippingDetails) (*domain.Flow, error)
	Back(ctx context.Context, user *User) (*domain.Flow, error)
	SubmitPayment(ctx context.Context, user *User, selection domain.PaymentSelection, cart Cart, idempotencyKey string) (Placement, error)
	Cancel(ctx context.Context, user *User) error
}

package ports

import (
	"context"
	"errors"

	cartdomain "github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	"github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

var ErrFlowNotFound = errors.New("checkout not started")

// User is the authenticated customer driving checkout.
type User struct {
	ID    string
	Name  string
	Email string
}

// FlowStore keeps one checkout flow per user.
type FlowStore interface {
	Get(ctx context.Context, userID string) (*domain.Flow, error)
	Save(ctx context.Context, flow *domain.Flow) error
	Delete(ctx context.Context, userID string) error
}

// ShippingProfile is the stored profile used to prefill the address step.
// Blank fields leave the seeded value in place.
type ShippingProfile struct {
	FullName string
	Phone    string
	Street   string
	City     string
	State    string
	ZipCode  string
}

// ProfileSource looks up a user's stored shipping profile.
type ProfileSource interface {
	ShippingProfile(ctx context.Context, userID string) (ShippingProfile, error)
}

// Cart is the live cart being checked out.
type Cart interface {
	Lines() []cartdomain.Line
	ClearCart(ctx context.Context)
}

// PlaceOrderInput carries everything order placement needs.
type PlaceOrderInput struct {
	User           User
	Draft          domain.Draft
	Cart           Cart
	IdempotencyKey string
}

// Placement is the outcome of a successful submit.
type Placement struct {
	OrderID  string
	Totals   pricingdomain.Totals
	Replayed bool
}

// OrderPlacer submits a checkout draft for order creation.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (Placement, error)
	// ReplayOrder reports the placement recorded under key. found is false
	// when key was never used by the user.
	ReplayOrder(ctx context.Context, user User, key string) (placement Placement, found bool, err error)
}


package ports

import (
	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// SubmitInput is a completed checkout ready to become an order.
type SubmitInput struct {
	User           *User
	Draft          checkoutdomain.Draft
	Cart           Cart
	IdempotencyKey string
}

// SubmitResult describes the placed order.
type SubmitResult struct {
	Order    *domain.Order
	Totals   pricingdomain.Totals
	Replayed bool
}

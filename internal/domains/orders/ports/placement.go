package ports

import (
	"context"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
)

// PlacementCommand is the frozen order plus the profile to sync alongside it.
type PlacementCommand struct {
	Order          *domain.Order
	Profile        ShippingProfile
	IdempotencyKey string
	AtomicWrites   bool
}

// PlacementOrchestrator runs profile sync, order create and lines create in that order.
type PlacementOrchestrator interface {
	Place(ctx context.Context, cmd PlacementCommand) (*domain.Order, error)
}

package orders

import (
	"context"
	"errors"

	"github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
	ordersports "github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

// OrderPlacer hands checkout drafts to the orders submission pipeline.
type OrderPlacer struct {
	orders ordersports.Service
}

func NewOrderPlacer(orders ordersports.Service) *OrderPlacer {
	return &OrderPlacer{orders: orders}
}

func (p *OrderPlacer) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (ports.Placement, error) {
	if p == nil || p.orders == nil {
		return ports.Placement{}, errors.New("order placer not configured")
	}
	var cart ordersports.Cart
	if in.Cart != nil {
		cart = in.Cart
	}
	result, err := p.orders.Submit(ctx, ordersports.SubmitInput{
		User:           &ordersports.User{ID: in.User.ID, Name: in.User.Name, Email: in.User.Email},
		Draft:          in.Draft,
		Cart:           cart,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return ports.Placement{}, err
	}
	return ports.Placement{OrderID: result.Order.ID, Totals: result.Totals, Replayed: result.Replayed}, nil
}

func (p *OrderPlacer) ReplayOrder(ctx context.Context, user ports.User, key string) (ports.Placement, bool, error) {
	if p == nil || p.orders == nil {
		return ports.Placement{}, false, errors.New("order placer not configured")
	}
	result, err := p.orders.Replay(ctx, &ordersports.User{ID: user.ID, Name: user.Name, Email: user.Email}, key)
	if err != nil {
		return ports.Placement{}, false, err
	}
	if result == nil || result.Order == nil {
		return ports.Placement{}, false, nil
	}
	return ports.Placement{OrderID: result.Order.ID, Totals: result.Totals, Replayed: true}, true, nil
}

var _ ports.OrderPlacer = (*OrderPlacer)(nil)

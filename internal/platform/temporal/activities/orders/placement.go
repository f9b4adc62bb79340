package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

const (
	// SyncProfileActivityName writes the shipping profile back to the account.
	SyncProfileActivityName = "orders.activities.SyncProfile"
	// CreateOrderActivityName inserts the order header.
	CreateOrderActivityName = "orders.activities.CreateOrder"
	// CreateOrderLinesActivityName inserts the order items.
	CreateOrderLinesActivityName = "orders.activities.CreateOrderLines"
	// DeleteOrderActivityName removes a header whose items could not be written.
	DeleteOrderActivityName = "orders.activities.DeleteOrder"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeOrderCreateFailed = "OrderCreateFailed"
	ErrTypeOrderLinesFailed  = "OrderLinesFailed"
)

// SyncProfileInput is the payload of the profile sync activity.
type SyncProfileInput struct {
	UserID  string
	Profile ports.ShippingProfile
}

// CreateOrderLinesInput is the payload of the lines activity.
type CreateOrderLinesInput struct {
	OrderID string
	Lines   []domain.Line
}

// Activities exposes the order placement steps to Temporal.
type Activities struct {
	placement *ordersapp.Placement
}

func NewActivities(placement *ordersapp.Placement) *Activities {
	return &Activities{placement: placement}
}

// SyncProfile stores the shipping profile. The workflow ignores its failure.
func (a *Activities) SyncProfile(ctx context.Context, input SyncProfileInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.placement == nil {
		return errors.New("order placement activities not initialized")
	}
	if err := a.placement.SyncProfile(ctx, input.UserID, input.Profile); err != nil {
		logger.Warn("SyncProfile activity failed", "userId", input.UserID, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), "ProfileSyncFailed", err)
	}
	logger.Info("SyncProfile activity completed", "userId", input.UserID)
	return nil
}

// CreateOrder inserts the order header.
func (a *Activities) CreateOrder(ctx context.Context, order *domain.Order) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.placement == nil {
		return temporal.NewNonRetryableApplicationError("order placement activities not initialized", ErrTypeOrderCreateFailed, nil)
	}
	if order == nil {
		return temporal.NewNonRetryableApplicationError("order is nil", ErrTypeOrderCreateFailed, nil)
	}
	logger.Info("CreateOrder activity started", "orderId", order.ID)
	if err := a.placement.CreateOrder(ctx, order); err != nil {
		logger.Error("CreateOrder activity failed", "orderId", order.ID, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeOrderCreateFailed, err)
	}
	logger.Info("CreateOrder activity completed", "orderId", order.ID)
	return nil
}

// CreateOrderLines inserts the order items.
func (a *Activities) CreateOrderLines(ctx context.Context, input CreateOrderLinesInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.placement == nil {
		return temporal.NewNonRetryableApplicationError("order placement activities not initialized", ErrTypeOrderLinesFailed, nil)
	}
	logger.Info("CreateOrderLines activity started", "orderId", input.OrderID, "lines", len(input.Lines))
	if err := a.placement.CreateLines(ctx, input.OrderID, input.Lines); err != nil {
		logger.Error("CreateOrderLines activity failed", "orderId", input.OrderID, "error", err)
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeOrderLinesFailed, err)
	}
	logger.Info("CreateOrderLines activity completed", "orderId", input.OrderID)
	return nil
}

// DeleteOrder removes an orphaned header.
func (a *Activities) DeleteOrder(ctx context.Context, orderID string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.placement == nil {
		return errors.New("order placement activities not initialized")
	}
	if err := a.placement.DeleteOrder(ctx, orderID); err != nil {
		logger.Error("DeleteOrder activity failed", "orderId", orderID, "error", err)
		return err
	}
	logger.Info("DeleteOrder activity completed", "orderId", orderID)
	return nil
}

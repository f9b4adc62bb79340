package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/freshcart-api/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence syncs the profile, then writes the order header and items.
// Placement steps run exactly once; retrying is left to the customer.
func RunOrderPlacementSequence(ctx workflow.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	order := cmd.Order
	if order == nil {
		return nil, temporal.NewNonRetryableApplicationError("placement requires an order", orderactivities.ErrTypeOrderCreateFailed, nil)
	}
	logger.Info("order placement sequence started", "orderId", order.ID)

	singleAttempt := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	compensation := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	stepCtx := workflow.WithActivityOptions(ctx, singleAttempt)

	profileInput := orderactivities.SyncProfileInput{UserID: order.UserID, Profile: cmd.Profile}
	if err := workflow.ExecuteActivity(stepCtx, orderactivities.SyncProfileActivityName, profileInput).Get(ctx, nil); err != nil {
		logger.Warn("order placement sequence profile sync failed", "orderId", order.ID, "error", err)
	}

	if err := workflow.ExecuteActivity(stepCtx, orderactivities.CreateOrderActivityName, order).Get(ctx, nil); err != nil {
		logger.Error("order placement sequence create failed", "orderId", order.ID, "error", err)
		return nil, err
	}

	linesInput := orderactivities.CreateOrderLinesInput{OrderID: order.ID, Lines: order.Lines}
	if err := workflow.ExecuteActivity(stepCtx, orderactivities.CreateOrderLinesActivityName, linesInput).Get(ctx, nil); err != nil {
		logger.Error("order placement sequence lines failed", "orderId", order.ID, "error", err)
		if cmd.AtomicWrites {
			compCtx := workflow.WithActivityOptions(ctx, compensation)
			if delErr := workflow.ExecuteActivity(compCtx, orderactivities.DeleteOrderActivityName, order.ID).Get(ctx, nil); delErr != nil {
				logger.Error("order placement sequence compensation failed", "orderId", order.ID, "error", delErr)
			}
		}
		return nil, err
	}

	logger.Info("order placement sequence completed", "orderId", order.ID)
	return order, nil
}

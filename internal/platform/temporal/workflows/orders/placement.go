package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	"github.com/Apurer/freshcart-api/internal/platform/temporal/sequences"
)

const (
	// OrderPlacementTaskQueue is the queue served by the order worker.
	OrderPlacementTaskQueue = "ORDER_PLACEMENT_TASK_QUEUE"
	// OrderPlacementWorkflowName is the registered workflow type.
	OrderPlacementWorkflowName = "orders.workflows.OrderPlacement"
)

// OrderPlacementWorkflowInput wraps the placement command with the caller's trace id.
type OrderPlacementWorkflowInput struct {
	Command ports.PlacementCommand
	TraceID string
}

// OrderPlacementWorkflow places one order.
func OrderPlacementWorkflow(ctx workflow.Context, input OrderPlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	if input.TraceID != "" {
		logger.Info("order placement workflow started", "traceId", input.TraceID)
	}
	return sequences.RunOrderPlacementSequence(ctx, input.Command)
}

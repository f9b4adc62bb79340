package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/freshcart-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/freshcart-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.PlacementOrchestrator = (*TemporalPlacement)(nil)
	_ ports.PlacementOrchestrator = (*InlinePlacement)(nil)
)

// TemporalPlacement runs order placement as a Temporal workflow.
type TemporalPlacement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPlacement wires a Temporal client into the orchestrator.
func NewTemporalPlacement(c client.Client) *TemporalPlacement {
	return &TemporalPlacement{client: c, taskQueue: orderworkflows.OrderPlacementTaskQueue}
}

// Place starts the placement workflow and waits for its result. A second start
// with the same idempotency key joins the existing run.
func (o *TemporalPlacement) Place(ctx context.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order placement not configured")
	}
	if cmd.Order == nil {
		return nil, fmt.Errorf("%w: order is required", ordersapp.ErrInvalidInput)
	}
	options := o.startOptions(cmd)
	workflowID := options.ID
	input := orderworkflows.OrderPlacementWorkflowInput{Command: cmd, TraceID: workflowTraceID(ctx)}
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderPlacementWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(cmd.IdempotencyKey) != "" {
			existing := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var placed domain.Order
			if err := existing.Get(ctx, &placed); err != nil {
				return nil, mapWorkflowError(err)
			}
			return &placed, nil
		}
		return nil, fmt.Errorf("%w: %w", ordersapp.ErrOrderCreateFailed, err)
	}
	var placed domain.Order
	if err := run.Get(ctx, &placed); err != nil {
		return nil, mapWorkflowError(err)
	}
	return &placed, nil
}

// startOptions rejects a second run under the same workflow ID, even after the
// first one closed, so a keyed submit can never place twice.
func (o *TemporalPlacement) startOptions(cmd ports.PlacementCommand) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:                    buildPlacementWorkflowID(cmd),
		TaskQueue:             o.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
}

// InlinePlacement runs the placement steps in-process, used for tests and when Temporal is off.
type InlinePlacement struct {
	placement *ordersapp.Placement
}

func NewInlinePlacement(placement *ordersapp.Placement) *InlinePlacement {
	return &InlinePlacement{placement: placement}
}

// Place delegates to the placement steps without durable orchestration.
func (o *InlinePlacement) Place(ctx context.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	if o == nil || o.placement == nil {
		return nil, errors.New("inline order placement not configured")
	}
	return o.placement.Run(ctx, cmd)
}

// mapWorkflowError turns activity failures back into the step sentinels.
func mapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case orderactivities.ErrTypeOrderLinesFailed:
			return fmt.Errorf("%w: %s", ordersapp.ErrOrderLinesFailed, appErr.Error())
		case orderactivities.ErrTypeOrderCreateFailed:
			return fmt.Errorf("%w: %s", ordersapp.ErrOrderCreateFailed, appErr.Error())
		}
	}
	return fmt.Errorf("%w: %w", ordersapp.ErrOrderCreateFailed, err)
}

func buildPlacementWorkflowID(cmd ports.PlacementCommand) string {
	if key := strings.TrimSpace(cmd.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(cmd.Order.UserID+":"+key))
	}
	return fmt.Sprintf("order-placement-%s", cmd.Order.ID)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

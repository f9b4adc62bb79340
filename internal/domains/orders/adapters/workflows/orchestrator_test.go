package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/freshcart-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/freshcart-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/freshcart-api/internal/platform/temporal/workflows/orders"
)

func placementOrder() *domain.Order {
	return &domain.Order{
		ID:       "order-1",
		UserID:   "user-1",
		Subtotal: decimal.RequireFromString("10.00"),
		Shipping: decimal.RequireFromString("4.99"),
		Tax:      decimal.RequireFromString("0.70"),
		Total:    decimal.RequireFromString("15.69"),
		Status:   domain.StatusPending,
		Lines: []domain.Line{{
			ID: "line-1", ProductID: "p1", ProductName: "Apples", Quantity: 2,
			UnitPrice: decimal.RequireFromString("5.00"),
		}},
	}
}

func TestInlinePlacement_RunsSteps(t *testing.T) {
	repo := memory.NewRepository()
	inline := NewInlinePlacement(ordersapp.NewPlacement(repo, ordersapp.WithTransactor(repo)))

	placed, err := inline.Place(context.Background(), ports.PlacementCommand{Order: placementOrder(), AtomicWrites: true})
	require.NoError(t, err)
	assert.Equal(t, "order-1", placed.ID)

	stored, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1)
}

func TestInlinePlacement_NotConfigured(t *testing.T) {
	var inline *InlinePlacement
	_, err := inline.Place(context.Background(), ports.PlacementCommand{Order: placementOrder()})
	require.Error(t, err)
}

func TestBuildPlacementWorkflowID(t *testing.T) {
	withKey := ports.PlacementCommand{Order: placementOrder(), IdempotencyKey: " key-1 "}
	again := ports.PlacementCommand{Order: placementOrder(), IdempotencyKey: "key-1"}
	assert.Equal(t, buildPlacementWorkflowID(withKey), buildPlacementWorkflowID(again))
	assert.Contains(t, buildPlacementWorkflowID(withKey), "order-placement-idem-")

	other := placementOrder()
	other.UserID = "user-2"
	assert.NotEqual(t, buildPlacementWorkflowID(again), buildPlacementWorkflowID(ports.PlacementCommand{Order: other, IdempotencyKey: "key-1"}))

	assert.Equal(t, "order-placement-order-1", buildPlacementWorkflowID(ports.PlacementCommand{Order: placementOrder()}))
}

func TestTemporalPlacement_StartOptionsRejectDuplicates(t *testing.T) {
	placement := NewTemporalPlacement(nil)
	keyed := ports.PlacementCommand{Order: placementOrder(), IdempotencyKey: "k1"}

	options := placement.startOptions(keyed)
	assert.Equal(t, buildPlacementWorkflowID(keyed), options.ID)
	assert.Equal(t, orderworkflows.OrderPlacementTaskQueue, options.TaskQueue)
	assert.Equal(t, enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE, options.WorkflowIDReusePolicy)

	unkeyed := placement.startOptions(ports.PlacementCommand{Order: placementOrder()})
	assert.Equal(t, "order-placement-order-1", unkeyed.ID)
	assert.Equal(t, enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE, unkeyed.WorkflowIDReusePolicy)
}

func TestMapWorkflowError(t *testing.T) {
	lines := temporal.NewNonRetryableApplicationError("insert failed", orderactivities.ErrTypeOrderLinesFailed, nil)
	assert.ErrorIs(t, mapWorkflowError(lines), ordersapp.ErrOrderLinesFailed)
	assert.Equal(t, ordersapp.StepOrderLines, ordersapp.FailedStep(mapWorkflowError(lines)))

	create := temporal.NewNonRetryableApplicationError("insert failed", orderactivities.ErrTypeOrderCreateFailed, nil)
	assert.ErrorIs(t, mapWorkflowError(create), ordersapp.ErrOrderCreateFailed)

	assert.ErrorIs(t, mapWorkflowError(errors.New("timeout")), ordersapp.ErrOrderCreateFailed)
}

package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/freshcart-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/freshcart-api/internal/platform/temporal/activities/orders"
)

type failingLines struct {
	*memory.Repository
}

func (f failingLines) CreateLines(context.Context, string, []domain.Line) error {
	return errors.New("insert order_items: connection reset")
}

func registerActivities(env *testsuite.TestWorkflowEnvironment, repo ports.Repository) {
	acts := orderactivities.NewActivities(ordersapp.NewPlacement(repo))
	env.RegisterActivityWithOptions(acts.SyncProfile, activity.RegisterOptions{Name: orderactivities.SyncProfileActivityName})
	env.RegisterActivityWithOptions(acts.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})
	env.RegisterActivityWithOptions(acts.CreateOrderLines, activity.RegisterOptions{Name: orderactivities.CreateOrderLinesActivityName})
	env.RegisterActivityWithOptions(acts.DeleteOrder, activity.RegisterOptions{Name: orderactivities.DeleteOrderActivityName})
}

func workflowOrder() *domain.Order {
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

func TestOrderPlacementWorkflow_WritesHeaderAndLines(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	repo := memory.NewRepository()
	registerActivities(env, repo)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: ports.PlacementCommand{Order: workflowOrder(), AtomicWrites: true},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var placed domain.Order
	require.NoError(t, env.GetWorkflowResult(&placed))
	assert.Equal(t, "order-1", placed.ID)

	stored, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1)
}

func TestOrderPlacementWorkflow_CompensatesFailedLines(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	repo := memory.NewRepository()
	registerActivities(env, failingLines{Repository: repo})

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: ports.PlacementCommand{Order: workflowOrder(), AtomicWrites: true},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())

	_, err := repo.GetByID(context.Background(), "order-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestOrderPlacementWorkflow_LegacyModeLeavesHeader(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	repo := memory.NewRepository()
	registerActivities(env, failingLines{Repository: repo})

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: ports.PlacementCommand{Order: workflowOrder()},
	})
	require.Error(t, env.GetWorkflowError())

	stored, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Lines)
}

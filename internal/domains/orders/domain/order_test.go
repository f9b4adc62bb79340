package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleOrder() *Order {
	return &Order{
		ID:       "6f1c2a9e-0000-4000-8000-000000000001",
		UserID:   "u1",
		Subtotal: d("12.98"),
		Shipping: d("4.99"),
		Tax:      d("0.91"),
		Total:    d("18.88"),
		Status:   StatusPending,
		Lines: []Line{
			{ProductID: "1", ProductName: "Milk", Quantity: 2, UnitPrice: d("3.99")},
			{ProductID: "2", ProductName: "Bread", Quantity: 1, UnitPrice: d("5.00")},
		},
	}
}

func TestOrder_Validate(t *testing.T) {
	require.NoError(t, sampleOrder().Validate())

	mismatch := sampleOrder()
	mismatch.Total = d("18.89")
	require.ErrorIs(t, mismatch.Validate(), ErrTotalMismatch)

	empty := sampleOrder()
	empty.Lines = nil
	require.ErrorIs(t, empty.Validate(), ErrNoLines)

	badLine := sampleOrder()
	badLine.Lines[0].Quantity = 0
	require.ErrorIs(t, badLine.Validate(), ErrInvalidLine)
}

func TestOrder_UpdateStatus(t *testing.T) {
	now := time.Now()
	order := sampleOrder()
	require.NoError(t, order.UpdateStatus(StatusProcessing, now))
	require.NoError(t, order.UpdateStatus(StatusShipped, now))
	require.ErrorIs(t, order.UpdateStatus(StatusCancelled, now), ErrStatusTransition)
	require.NoError(t, order.UpdateStatus(StatusDelivered, now))
	require.True(t, order.Status.Terminal())
	require.ErrorIs(t, order.UpdateStatus("lost", now), ErrInvalidStatus)
}

func TestOrder_Helpers(t *testing.T) {
	order := sampleOrder()
	require.Equal(t, 3, order.ItemCount())
	require.Equal(t, "6f1c2a9e", order.ShortID())
	require.True(t, order.Lines[0].Total().Equal(d("7.98")))

	clone := order.Clone()
	clone.Lines[0].Quantity = 9
	require.Equal(t, 2, order.Lines[0].Quantity)
}

func TestStatus(t *testing.T) {
	require.Equal(t, StatusPendingCOD, InitialStatus(true))
	require.Equal(t, StatusPending, InitialStatus(false))
	require.Equal(t, "Pending (Cash on Delivery)", StatusPendingCOD.Label())
	require.Equal(t, "Processing", StatusProcessing.Label())
	require.True(t, StatusPendingCOD.CanTransitionTo(StatusCancelled))
	require.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))

	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, s)
	_, err = ParseStatus("lost")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

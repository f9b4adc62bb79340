package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

func newOrder(id, userID string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:        id,
		UserID:    userID,
		Subtotal:  decimal.RequireFromString("10.00"),
		Shipping:  decimal.RequireFromString("4.99"),
		Tax:       decimal.RequireFromString("0.70"),
		Total:     decimal.RequireFromString("15.69"),
		Status:    domain.StatusPending,
		CreatedAt: createdAt,
		Lines: []domain.Line{
			{ID: id + "-l1", ProductID: "1", ProductName: "Milk", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
}

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	older := newOrder("a", "u1", base)
	newer := newOrder("b", "u1", base.Add(time.Hour))
	for _, o := range []*domain.Order{older, newer, newOrder("c", "u2", base)} {
		require.NoError(t, repo.CreateOrder(ctx, o))
		require.NoError(t, repo.CreateLines(ctx, o.ID, o.Lines))
	}

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Equal(t, "a", got.Lines[0].OrderID)

	orders, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "b", orders[0].ID)

	latest, err := repo.LatestForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "b", latest.ID)

	_, err = repo.LatestForUser(ctx, "nobody")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateLinesForMissingOrder(t *testing.T) {
	err := NewRepository().CreateLines(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.CreateOrder(ctx, newOrder("a", "u1", time.Now())))

	updated, err := repo.UpdateStatus(ctx, "a", domain.StatusProcessing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, updated.Status)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.ErrorIs(t, repo.Delete(ctx, "a"), ports.ErrNotFound)
	_, err = repo.UpdateStatus(ctx, "a", domain.StatusShipped)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_WithinTxCommits(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	order := newOrder("a", "u1", time.Now())

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if _, err := repo.GetByID(ctx, "a"); !errors.Is(err, ports.ErrNotFound) {
			return errors.New("staged order visible outside tx")
		}
		return tx.CreateLines(ctx, order.ID, order.Lines)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
}

func TestRepository_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	boom := errors.New("lines failed")

	err := repo.WithinTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		require.NoError(t, tx.CreateOrder(ctx, newOrder("a", "u1", time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "a")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

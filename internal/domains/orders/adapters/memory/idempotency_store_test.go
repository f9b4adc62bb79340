package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

func TestIdempotencyStore_RecordsPerUser(t *testing.T) {
	ctx := context.Background()
	placedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(func() time.Time { return placedAt })

	missing, err := store.Lookup(ctx, "u1", "k")
	require.NoError(t, err)
	require.Nil(t, missing)

	saved, err := store.Record(ctx, ports.SubmitReceipt{UserID: "u1", Key: "k", Fingerprint: "h1", OrderID: "o1"})
	require.NoError(t, err)
	require.Equal(t, placedAt, saved.PlacedAt)

	again, err := store.Record(ctx, ports.SubmitReceipt{UserID: "u1", Key: "k", Fingerprint: "h1", OrderID: "o1"})
	require.NoError(t, err)
	require.Equal(t, "o1", again.OrderID)

	stored, err := store.Record(ctx, ports.SubmitReceipt{UserID: "u1", Key: "k", Fingerprint: "h2", OrderID: "o2"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, "o1", stored.OrderID)

	other, err := store.Record(ctx, ports.SubmitReceipt{UserID: "u2", Key: "k", Fingerprint: "h2", OrderID: "o2"})
	require.NoError(t, err)
	require.Equal(t, "o2", other.OrderID)

	found, err := store.Lookup(ctx, "u1", "k")
	require.NoError(t, err)
	require.Equal(t, "h1", found.Fingerprint)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

func TestSessionStore_PurgeExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Session{Token: "old", UserID: "u1", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "fresh", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "old")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
}

func TestRepository_EmailIsUnique(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "ada@example.com"}))
	require.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Email: "ada@example.com"}), ports.ErrEmailTaken)

	user, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)

	user.Email = "lovelace@example.com"
	require.NoError(t, repo.Update(ctx, user))
	_, err = repo.GetByEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

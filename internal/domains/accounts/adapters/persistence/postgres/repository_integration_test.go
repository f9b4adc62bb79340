//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
	"github.com/Apurer/freshcart-api/internal/platform/migrations"
)

func setupAccountsPostgresContainer(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("freshcart_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	})
	return db
}

func TestRepository_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupAccountsPostgresContainer(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser("00000000-0000-4000-8000-000000000001", "Ada", "ada@example.com", "secret1", time.Now())
	require.NoError(t, err)
	user.Grant(domain.RoleAdmin)
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.True(t, byEmail.IsAdmin())
	assert.True(t, byEmail.CheckPassword("secret1"))

	dup, err := domain.NewUser("00000000-0000-4000-8000-000000000002", "Ada 2", "ada@example.com", "secret1", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), ports.ErrEmailTaken)

	_, err = repo.GetByID(ctx, "00000000-0000-4000-8000-000000000009")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestProfileRepository_SaveAndLegacyFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupAccountsPostgresContainer(t)
	profiles := NewProfileRepository(db)
	ctx := context.Background()

	addr := domain.Address{Street: "12 Analytical Way", City: "London", State: "LDN", ZipCode: "N1 9GU"}
	require.NoError(t, profiles.Save(ctx, domain.Profile{UserID: "u1", FullName: "Ada", Address: addr}))
	got, err := profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, addr, got.Address)

	require.NoError(t, db.Create(&profileRecord{UserID: "u2", Address: "1 Main St, Springfield, IL 62701"}).Error)
	legacy, err := profiles.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Springfield", legacy.Address.City)
	assert.Equal(t, "62701", legacy.Address.ZipCode)

	_, err = profiles.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrProfileNotFound)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupAccountsPostgresContainer(t)
	store := NewSessionStore(db, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Session{Token: "old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "fresh", UserID: "u1"}))

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	fresh, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, fresh.ExpiresAt.After(time.Now()))
}

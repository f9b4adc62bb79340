package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/memory"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

type accountsHarness struct {
	svc      *Service
	profiles *memory.ProfileRepository
	sessions *memory.SessionStore
	now      time.Time
}

func newAccountsHarness(t *testing.T) *accountsHarness {
	t.Helper()
	h := &accountsHarness{
		profiles: memory.NewProfileRepository(),
		sessions: memory.NewSessionStore(),
		now:      time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	seq := 0
	h.svc = NewService(memory.NewRepository(), h.profiles, h.sessions,
		WithClock(func() time.Time { return h.now }),
		WithSessionTTL(time.Hour),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	return h
}

func TestRegister_SignsInAndCreatesProfile(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	var events []domain.AuthEvent
	unsubscribe := h.svc.OnAuthChange(func(e domain.AuthEvent) { events = append(events, e) })
	defer unsubscribe()

	result, err := h.svc.Register(ctx, ports.Registration{Name: "Ada Lovelace", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Equal(t, h.now.Add(time.Hour), result.Session.ExpiresAt)

	user, err := h.svc.CurrentUser(ctx, result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	profile, err := h.svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)

	require.Len(t, events, 1)
	assert.Equal(t, domain.AuthRegistered, events[0].Kind)
}

func TestRegister_Rejects(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	_, err := h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_AndLogout(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	_, err := h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.svc.Login(ctx, ports.Credentials{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = h.svc.Login(ctx, ports.Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAuthentication)

	var kinds []domain.AuthEventKind
	h.svc.OnAuthChange(func(e domain.AuthEvent) { kinds = append(kinds, e.Kind) })

	result, err := h.svc.Login(ctx, ports.Credentials{Email: " ADA@example.com ", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, h.svc.Logout(ctx, result.Session.Token))
	require.NoError(t, h.svc.Logout(ctx, result.Session.Token))

	_, err = h.svc.CurrentUser(ctx, result.Session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, []domain.AuthEventKind{domain.AuthLoggedIn, domain.AuthLoggedOut}, kinds)
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	result, err := h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	h.now = h.now.Add(2 * time.Hour)
	_, err = h.svc.CurrentUser(ctx, result.Session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = h.svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestOnAuthChange_Unsubscribe(t *testing.T) {
	h := newAccountsHarness(t)
	calls := 0
	unsubscribe := h.svc.OnAuthChange(func(domain.AuthEvent) { calls++ })
	unsubscribe()
	unsubscribe()

	_, err := h.svc.Register(context.Background(), ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestSyncShippingProfile_OverlaysNonEmptyFields(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	_, err := h.svc.UpdateProfile(ctx, domain.Profile{UserID: "u1", FullName: "Ada", Phone: "555-0100"})
	require.NoError(t, err)

	addr := domain.Address{Street: "12 Analytical Way", City: "London", State: "LDN", ZipCode: "N1 9GU"}
	require.NoError(t, h.svc.SyncShippingProfile(ctx, domain.Profile{UserID: "u1", FullName: " Ada Lovelace ", Address: addr}))

	profile, err := h.svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, "555-0100", profile.Phone)
	assert.Equal(t, addr, profile.Address)

	require.NoError(t, h.svc.SyncShippingProfile(ctx, domain.Profile{UserID: "u2", Phone: "1"}))
	assert.ErrorIs(t, h.svc.SyncShippingProfile(ctx, domain.Profile{}), ErrUnauthenticated)
}

func TestGetProfile_NotFound(t *testing.T) {
	h := newAccountsHarness(t)
	_, err := h.svc.GetProfile(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEnsureAdmin_CreatesThenPromotes(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()

	admin, err := h.svc.EnsureAdmin(ctx, "Admin User", "admin@freshcart.com", "adminpass")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	again, err := h.svc.EnsureAdmin(ctx, "Admin User", "admin@freshcart.com", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	result, err := h.svc.Register(ctx, ports.Registration{Name: "Ops", Email: "ops@freshcart.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, result.User.IsAdmin())
	promoted, err := h.svc.EnsureAdmin(ctx, "Ops", "ops@freshcart.com", "ignored1")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin())
}

func TestPurgeExpiredSessions(t *testing.T) {
	h := newAccountsHarness(t)
	ctx := context.Background()
	_, err := h.svc.Register(ctx, ports.Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	h.sessions.WithClock(func() time.Time { return h.now.Add(2 * time.Hour) })
	purged, err := h.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

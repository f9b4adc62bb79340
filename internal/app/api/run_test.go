package api

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ordersmailer "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/external/mailer"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
	platformobservability "github.com/Apurer/freshcart-api/internal/platform/observability"
)

func TestOpenStores_FallsBackToMemory(t *testing.T) {
	stores := OpenStores(context.Background(), Config{}, slog.New(slog.DiscardHandler))
	defer stores.Close()

	require.Nil(t, stores.DB)
	require.NotNil(t, stores.Users)
	require.NotNil(t, stores.Orders)
	require.NotNil(t, stores.Transactor)
	require.NotNil(t, stores.Idempotency)
}

func TestNewSnapshotStore_PostgresWithoutDBFallsBack(t *testing.T) {
	cfg := Config{CartSnapshotBackend: SnapshotBackendPostgres}
	store, cleanup := NewSnapshotStore(context.Background(), cfg, nil, platformobservability.Noop())
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cart:abc", `{"items":[]}`))
	got, err := store.Get(ctx, "cart:abc")
	require.NoError(t, err)
	require.Equal(t, `{"items":[]}`, got)
}

func TestDialTemporal_Disabled(t *testing.T) {
	_, err := DialTemporal(Config{TemporalDisabled: true}, platformobservability.Noop(), "test")
	require.Error(t, err)
}

func TestBuildMailer_LogsWithoutAPIKey(t *testing.T) {
	formatter := pricingdomain.MustFormatter("USD", "en-US")
	mailer, err := buildMailer(Config{StoreURL: "https://freshcart.com"}, formatter, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.IsType(t, &ordersmailer.LogMailer{}, mailer)

	mailer, err = buildMailer(Config{MailerBaseURL: "https://api.resend.com", MailerAPIKey: "re_test"}, formatter, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.IsType(t, &ordersmailer.Mailer{}, mailer)
}

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestPurgeSessions_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	purger := &countingPurger{err: errors.New("db down")}
	done := make(chan struct{})
	go func() {
		purgeSessions(ctx, purger, 5*time.Millisecond, slog.New(slog.DiscardHandler))
		close(done)
	}()

	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop")
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	accountsmemory "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/memory"
	accountsobs "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/observability"
	accountspostgres "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/persistence/postgres"
	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	accountsports "github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
	cartmemory "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/observability"
	cartmongo "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/persistence/mongo"
	cartpostgres "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/persistence/postgres"
	cartredis "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/redis"
	cartports "github.com/Apurer/freshcart-api/internal/domains/cart/ports"
	ordersaccounts "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/accounts"
	ordersmemory "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	platformmongo "github.com/Apurer/freshcart-api/internal/platform/mongo"
	platformobservability "github.com/Apurer/freshcart-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/freshcart-api/internal/platform/postgres"
	platformredis "github.com/Apurer/freshcart-api/internal/platform/redis"
)

// Stores holds the persistence chosen for this process. DB is nil in memory mode.
type Stores struct {
	DB          *gorm.DB
	Users       accountsports.Repository
	Profiles    accountsports.ProfileRepository
	Sessions    accountsports.SessionStore
	Orders      ordersports.Repository
	Transactor  ordersports.Transactor
	Idempotency ordersports.IdempotencyStore

	cleanup func()
}

// Close releases the database connection, if any.
func (s *Stores) Close() {
	if s != nil && s.cleanup != nil {
		s.cleanup()
	}
}

// OpenStores connects to PostgreSQL when configured, migrating the schema, and falls back to memory.
func OpenStores(ctx context.Context, cfg Config, logger *slog.Logger) *Stores {
	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger, platformpostgres.WithMigrations())
	if db == nil {
		orders := ordersmemory.NewRepository()
		return &Stores{
			Users:       accountsmemory.NewRepository(),
			Profiles:    accountsmemory.NewProfileRepository(),
			Sessions:    accountsmemory.NewSessionStore(),
			Orders:      orders,
			Transactor:  orders,
			Idempotency: ordersmemory.NewIdempotencyStore(),
			cleanup:     cleanup,
		}
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = accountspostgres.DefaultSessionTTL
	}
	orders := orderspostgres.NewRepository(db)
	logger.Info("accounts and orders configured with postgres")
	return &Stores{
		DB:          db,
		Users:       accountspostgres.NewRepository(db),
		Profiles:    accountspostgres.NewProfileRepository(db),
		Sessions:    accountspostgres.NewSessionStore(db, ttl),
		Orders:      orders,
		Transactor:  orders,
		Idempotency: orderspostgres.NewIdempotencyStore(db),
		cleanup:     cleanup,
	}
}

// NewAccounts builds the accounts core plus its instrumented port.
func NewAccounts(stores *Stores, cfg Config, instruments *platformobservability.Instruments) (*accountsapp.Service, accountsports.Service) {
	opts := []accountsapp.Option{accountsapp.WithLogger(instruments.Logger)}
	if cfg.SessionTTL > 0 {
		opts = append(opts, accountsapp.WithSessionTTL(cfg.SessionTTL))
	}
	core := accountsapp.NewService(stores.Users, stores.Profiles, stores.Sessions, opts...)
	return core, accountsobs.New(
		core,
		accountsobs.WithLogger(instruments.Logger),
		accountsobs.WithTracer(instruments.Tracer("internal.accounts.application")),
		accountsobs.WithMeter(instruments.Meter("internal.accounts.application")),
	)
}

// NewPlacement builds the order write steps shared by the inline orchestrator and the Temporal activities.
func NewPlacement(stores *Stores, accounts ordersaccounts.ProfileSyncer, logger *slog.Logger) *ordersapp.Placement {
	return ordersapp.NewPlacement(
		stores.Orders,
		ordersapp.WithTransactor(stores.Transactor),
		ordersapp.WithProfileWriter(ordersaccounts.NewProfileWriter(accounts)),
		ordersapp.WithPlacementLogger(logger),
	)
}

// NewSnapshotStore selects the cart snapshot backend. An unreachable backend falls back to memory.
func NewSnapshotStore(ctx context.Context, cfg Config, db *gorm.DB, instruments *platformobservability.Instruments) (cartports.SnapshotStore, func()) {
	logger := instruments.Logger
	inner, backend, cleanup, err := openSnapshotBackend(ctx, cfg, db)
	if err != nil {
		logger.Warn("cart snapshot backend unavailable, falling back to memory",
			slog.String("backend", cfg.CartSnapshotBackend),
			slog.String("error", err.Error()),
		)
		inner, backend, cleanup = cartmemory.NewSnapshotStore(), SnapshotBackendMemory, func() {}
	}
	logger.Info("cart snapshots configured", slog.String("backend", backend))
	return cartobs.New(
		inner,
		backend,
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.snapshots")),
		cartobs.WithMeter(instruments.Meter("internal.cart.snapshots")),
	), cleanup
}

func openSnapshotBackend(ctx context.Context, cfg Config, db *gorm.DB) (cartports.SnapshotStore, string, func(), error) {
	switch cfg.CartSnapshotBackend {
	case SnapshotBackendRedis:
		rdb, err := platformredis.Connect(ctx, platformredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, "", nil, err
		}
		var opts []cartredis.Option
		if cfg.CartSnapshotTTL > 0 {
			opts = append(opts, cartredis.WithTTL(cfg.CartSnapshotTTL))
		}
		return cartredis.NewSnapshotStore(rdb, opts...), SnapshotBackendRedis, func() { _ = rdb.Close() }, nil
	case SnapshotBackendPostgres:
		if db == nil {
			return nil, "", nil, errors.New("postgres snapshots need POSTGRES_DSN")
		}
		return cartpostgres.NewSnapshotStore(db), SnapshotBackendPostgres, func() {}, nil
	case SnapshotBackendMongo:
		mdb, err := platformmongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, "", nil, err
		}
		store := cartmongo.NewSnapshotStore(mdb)
		if err := store.CreateIndexes(ctx); err != nil {
			_ = mdb.Client().Disconnect(context.Background())
			return nil, "", nil, fmt.Errorf("create snapshot indexes: %w", err)
		}
		return store, SnapshotBackendMongo, func() { _ = mdb.Client().Disconnect(context.Background()) }, nil
	default:
		return cartmemory.NewSnapshotStore(), SnapshotBackendMemory, func() {}, nil
	}
}

// DialTemporal connects to Temporal with tracing and structured logging.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

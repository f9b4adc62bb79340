package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	storefrontserver "github.com/Apurer/freshcart-api/go"

	mailerclient "github.com/Apurer/freshcart-api/internal/clients/http/mailer"
	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	cartnotify "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/notify"
	cartapp "github.com/Apurer/freshcart-api/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/freshcart-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/freshcart-api/internal/domains/catalog/application"
	checkoutaccounts "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/accounts"
	checkoutmemory "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/memory"
	checkoutorders "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/orders"
	checkoutapp "github.com/Apurer/freshcart-api/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
	ordersmailer "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/external/mailer"
	ordersobs "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
	platformobservability "github.com/Apurer/freshcart-api/internal/platform/observability"
)

const serviceName = "freshcart-api"

// Run boots the FreshCart HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores := OpenStores(ctx, cfg, logger)
	defer stores.Close()

	accountsCore, accountsService := NewAccounts(stores, cfg, instruments)
	if cfg.SeedAdmin() {
		if _, err := accountsCore.EnsureAdmin(ctx, "Store Admin", cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
		logger.Info("admin account ensured", slog.String("email", cfg.AdminEmail))
	}

	catalogRepo, err := catalogmemory.NewSeededRepository()
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	catalogService := catalogapp.NewService(catalogRepo)

	snapshots, closeSnapshots := NewSnapshotStore(ctx, cfg, stores.DB, instruments)
	defer closeSnapshots()
	inbox := cartnotify.NewInbox(0)
	registry := cartapp.NewRegistry(
		snapshots,
		cartapp.WithStoreOptions(
			cartapp.WithLogger(logger),
			cartapp.WithNotifier(cartnotify.NewLogger(logger, inbox)),
		),
		cartapp.WithCapacity(cfg.CartCacheSize),
		cartapp.WithIdleTTL(cfg.CartIdleTTL),
		cartapp.WithRegistryLogger(logger),
	)
	go registry.RunJanitor(ctx, time.Minute)
	carts := storefrontserver.NewCarts(registry, catalogService, inbox)

	formatter, err := pricingdomain.NewFormatter(cfg.PricingCurrency, cfg.PricingLocale)
	if err != nil {
		return err
	}
	mailer, err := buildMailer(cfg, formatter, logger)
	if err != nil {
		return err
	}

	placement := NewPlacement(stores, accountsService, logger)
	var orchestrator ordersports.PlacementOrchestrator = ordersworkflows.NewInlinePlacement(placement)
	if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orchestrator = ordersworkflows.NewTemporalPlacement(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	pipeline := ordersapp.NewPipeline(
		orchestrator,
		stores.Orders,
		ordersapp.WithIdempotencyStore(stores.Idempotency),
		ordersapp.WithAtomicWrites(cfg.OrdersAtomicWrites),
		ordersapp.WithPipelineLogger(logger),
	)
	orderService := ordersobs.New(
		ordersapp.NewService(stores.Orders, pipeline, ordersapp.NewConfirmationService(stores.Orders, mailer)),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	checkoutService := checkoutapp.NewService(
		checkoutmemory.NewFlowStore(),
		checkoutorders.NewOrderPlacer(orderService),
		checkoutapp.WithProfileSource(checkoutaccounts.NewProfileSource(accountsService)),
		checkoutapp.WithLogger(logger),
	)
	unsubscribe := accountsCore.OnAuthChange(func(event accountsdomain.AuthEvent) {
		if event.Kind != accountsdomain.AuthLoggedOut {
			return
		}
		if err := checkoutService.Cancel(context.Background(), &checkoutports.User{ID: event.UserID}); err != nil {
			logger.Warn("failed to drop checkout on logout", slog.String("user_id", event.UserID), slog.String("error", err.Error()))
		}
	})
	defer unsubscribe()

	if cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessions(ctx, accountsCore, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	handlers := storefrontserver.ApiHandleFunctions{
		CatalogAPI:  storefrontserver.NewCatalogAPI(catalogService),
		CartAPI:     storefrontserver.NewCartAPI(carts),
		WishlistAPI: storefrontserver.NewWishlistAPI(carts),
		PricingAPI:  storefrontserver.NewPricingAPI(carts, formatter),
		AuthAPI:     storefrontserver.NewAuthAPI(accountsService),
		AccountAPI:  storefrontserver.NewAccountAPI(accountsService),
		CheckoutAPI: storefrontserver.NewCheckoutAPI(checkoutService, carts),
		OrderAPI:    storefrontserver.NewOrderAPI(orderService),
	}
	router := storefrontserver.NewRouter(handlers, storefrontserver.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Sessions:       accountsService,
		Logger:         logger,
		Middleware:     []gin.HandlerFunc{otelgin.Middleware(serviceName)},
	})

	return serve(ctx, ":"+cfg.Port, router, logger)
}

func buildMailer(cfg Config, formatter *pricingdomain.Formatter, logger *slog.Logger) (ordersports.ConfirmationMailer, error) {
	renderer := ordersmailer.NewRenderer(formatter, cfg.StoreURL)
	if !cfg.MailerEnabled() {
		logger.Warn("MAILER_API_KEY not set, confirmation emails are logged only")
		return ordersmailer.NewLogMailer(renderer, logger), nil
	}
	httpClient, err := mailerclient.NewClient(cfg.MailerBaseURL, cfg.MailerAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mail client: %w", err)
	}
	return ordersmailer.New(httpClient, renderer, cfg.MailerFrom), nil
}

type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

func purgeSessions(ctx context.Context, purger sessionPurger, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := purger.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("expired sessions purged", slog.Int64("removed", removed))
		}
	}
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("FreshCart API listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("FreshCart API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("FreshCart API shutting down")
	return srv.Shutdown(shutdownCtx)
}

//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	pacttest "github.com/Apurer/freshcart-api/test/pact"

	storefrontserver "github.com/Apurer/freshcart-api/go"
	accountsmemory "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/memory"
	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	cartmemory "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/memory"
	"github.com/Apurer/freshcart-api/internal/domains/cart/adapters/notify"
	cartapp "github.com/Apurer/freshcart-api/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/freshcart-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/freshcart-api/internal/domains/catalog/application"
	checkoutmemory "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/memory"
	checkoutorders "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/orders"
	checkoutapp "github.com/Apurer/freshcart-api/internal/domains/checkout/application"
	ordersmailer "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/external/mailer"
	ordersmemory "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestStorefrontProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogSeeded: func(bool, models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateEmptyCart: func(bool, models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateCartHasApples: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedApples(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp rebuilds the in-memory storefront for every provider state.
type contractProviderApp struct {
	mu      sync.RWMutex
	router  *gin.Engine
	catalog *catalogapp.Service
	carts   *cartapp.Registry
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()

	accounts := accountsapp.NewService(
		accountsmemory.NewRepository(),
		accountsmemory.NewProfileRepository(),
		accountsmemory.NewSessionStore(),
	)
	ordersRepo := ordersmemory.NewRepository()
	pipeline := ordersapp.NewPipeline(
		ordersworkflows.NewInlinePlacement(ordersapp.NewPlacement(ordersRepo, ordersapp.WithTransactor(ordersRepo))),
		ordersRepo,
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	)
	formatter := pricingdomain.MustFormatter(pricingdomain.DefaultCurrency, pricingdomain.DefaultLocale)
	mailer := ordersmailer.NewLogMailer(ordersmailer.NewRenderer(formatter, "https://freshcart.com"), nil)
	orders := ordersobs.New(ordersapp.NewService(ordersRepo, pipeline, ordersapp.NewConfirmationService(ordersRepo, mailer)))
	checkout := checkoutapp.NewService(checkoutmemory.NewFlowStore(), checkoutorders.NewOrderPlacer(orders))

	catalogRepo, err := catalogmemory.NewSeededRepository()
	require.NoError(t, err)
	catalog := catalogapp.NewService(catalogRepo)
	inbox := notify.NewInbox(0)
	registry := cartapp.NewRegistry(cartmemory.NewSnapshotStore(), cartapp.WithStoreOptions(cartapp.WithNotifier(inbox)))
	carts := storefrontserver.NewCarts(registry, catalog, inbox)

	router := storefrontserver.NewRouter(storefrontserver.ApiHandleFunctions{
		CatalogAPI:  storefrontserver.NewCatalogAPI(catalog),
		CartAPI:     storefrontserver.NewCartAPI(carts),
		WishlistAPI: storefrontserver.NewWishlistAPI(carts),
		PricingAPI:  storefrontserver.NewPricingAPI(carts, formatter),
		AuthAPI:     storefrontserver.NewAuthAPI(accounts),
		AccountAPI:  storefrontserver.NewAccountAPI(accounts),
		CheckoutAPI: storefrontserver.NewCheckoutAPI(checkout, carts),
		OrderAPI:    storefrontserver.NewOrderAPI(orders),
	}, storefrontserver.RouterOptions{Sessions: accounts})

	a.mu.Lock()
	a.router, a.catalog, a.carts = router, catalog, registry
	a.mu.Unlock()
}

func (a *contractProviderApp) seedApples(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	a.mu.RLock()
	catalog, carts := a.catalog, a.carts
	a.mu.RUnlock()

	apples, err := catalog.Get(ctx, pacttest.ExistingProduct)
	require.NoError(t, err)
	store, err := carts.Get(ctx, pacttest.InstallationID)
	require.NoError(t, err)
	require.NoError(t, store.AddToCart(ctx, apples, pacttest.ApplesInCart))
}

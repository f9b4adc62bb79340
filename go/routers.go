package storefrontserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Route is one API operation.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the per-area handlers.
type ApiHandleFunctions struct {
	CatalogAPI  CatalogAPI
	CartAPI     CartAPI
	WishlistAPI WishlistAPI
	PricingAPI  PricingAPI
	AuthAPI     AuthAPI
	AccountAPI  AccountAPI
	CheckoutAPI CheckoutAPI
	OrderAPI    OrderAPI
}

// RouterOptions configures the engine built by NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Sessions       SessionResolver
	Logger         *slog.Logger
	// Middleware runs before the storefront middleware, e.g. otelgin.
	Middleware []gin.HandlerFunc
}

// NewRouter returns a gin engine serving every route under /v1.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	return NewRouterWithGinEngine(gin.New(), handleFunctions, opts)
}

// NewRouterWithGinEngine registers the routes on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router.Use(gin.Recovery())
	router.Use(opts.Middleware...)
	router.Use(corsMiddleware(opts.AllowedOrigins))
	router.Use(InstallationMiddleware())
	router.Use(SessionMiddleware(opts.Sessions, opts.Logger))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderInstallationID, HeaderIdempotencyKey},
		ExposeHeaders:    []string{HeaderInstallationID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"ListProducts", http.MethodGet, "/v1/products", h.CatalogAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/v1/products/:id", h.CatalogAPI.GetProduct},
		{"ListCategories", http.MethodGet, "/v1/categories", h.CatalogAPI.ListCategories},

		{"GetCart", http.MethodGet, "/v1/cart", h.CartAPI.GetCart},
		{"AddCartItem", http.MethodPost, "/v1/cart/items", h.CartAPI.AddItem},
		{"UpdateCartItem", http.MethodPut, "/v1/cart/items/:productId", h.CartAPI.UpdateItem},
		{"RemoveCartItem", http.MethodDelete, "/v1/cart/items/:productId", h.CartAPI.RemoveItem},
		{"ClearCart", http.MethodDelete, "/v1/cart", h.CartAPI.ClearCart},

		{"GetWishlist", http.MethodGet, "/v1/wishlist", h.WishlistAPI.GetWishlist},
		{"AddToWishlist", http.MethodPost, "/v1/wishlist", h.WishlistAPI.AddToWishlist},
		{"ToggleWishlist", http.MethodPost, "/v1/wishlist/toggle", h.WishlistAPI.ToggleWishlist},
		{"RemoveFromWishlist", http.MethodDelete, "/v1/wishlist/:productId", h.WishlistAPI.RemoveFromWishlist},
		{"IsInWishlist", http.MethodGet, "/v1/wishlist/:productId", h.WishlistAPI.IsInWishlist},

		{"GetPricingSummary", http.MethodGet, "/v1/pricing/summary", h.PricingAPI.GetSummary},

		{"Register", http.MethodPost, "/v1/auth/register", h.AuthAPI.Register},
		{"Login", http.MethodPost, "/v1/auth/login", h.AuthAPI.Login},
		{"Logout", http.MethodPost, "/v1/auth/logout", h.AuthAPI.Logout},
		{"Me", http.MethodGet, "/v1/auth/me", h.AuthAPI.Me},

		{"GetProfile", http.MethodGet, "/v1/account/profile", h.AccountAPI.GetProfile},
		{"UpdateProfile", http.MethodPut, "/v1/account/profile", h.AccountAPI.UpdateProfile},

		{"BeginCheckout", http.MethodPost, "/v1/checkout", h.CheckoutAPI.Begin},
		{"GetCheckout", http.MethodGet, "/v1/checkout", h.CheckoutAPI.Current},
		{"SubmitCheckoutAddress", http.MethodPost, "/v1/checkout/address", h.CheckoutAPI.SubmitAddress},
		{"CheckoutBack", http.MethodPost, "/v1/checkout/back", h.CheckoutAPI.Back},
		{"SubmitCheckoutPayment", http.MethodPost, "/v1/checkout/payment", h.CheckoutAPI.SubmitPayment},
		{"CancelCheckout", http.MethodDelete, "/v1/checkout", h.CheckoutAPI.Cancel},

		{"ListOrders", http.MethodGet, "/v1/orders", h.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/v1/orders/:id", h.OrderAPI.GetOrder},
		{"SendOrderConfirmation", http.MethodPost, "/v1/orders/:id/confirmation", h.OrderAPI.SendConfirmation},
		{"UpdateOrderStatus", http.MethodPatch, "/v1/orders/:id/status", h.OrderAPI.UpdateStatus},
	}
}

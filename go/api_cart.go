package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/Apurer/freshcart-api/internal/domains/cart/application"
	cartports "github.com/Apurer/freshcart-api/internal/domains/cart/ports"
	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/freshcart-api/internal/domains/catalog/ports"
)

// NotificationDrainer hands over the notifications raised for an installation since the last drain.
type NotificationDrainer interface {
	Drain(installationID string) []cartports.Notification
}

// Carts resolves the calling installation's cart and wishlist store.
type Carts struct {
	registry *cartapp.Registry
	catalog  catalogports.Service
	inbox    NotificationDrainer
}

// NewCarts builds the shared cart access used by the cart, wishlist, pricing and checkout handlers.
// inbox may be nil, in which case responses carry no notifications.
func NewCarts(registry *cartapp.Registry, catalog catalogports.Service, inbox NotificationDrainer) Carts {
	return Carts{registry: registry, catalog: catalog, inbox: inbox}
}

func (carts Carts) store(c *gin.Context) (*cartapp.Store, bool) {
	store, err := carts.registry.Get(c.Request.Context(), installationID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return store, true
}

func (carts Carts) product(c *gin.Context, id string) (*catalogdomain.Product, bool) {
	product, err := carts.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return product, true
}

func (carts Carts) drain(c *gin.Context) []cartports.Notification {
	if carts.inbox == nil {
		return nil
	}
	return carts.inbox.Drain(installationID(c))
}

func (carts Carts) respondCart(c *gin.Context, status int, store *cartapp.Store) {
	c.JSON(status, cartmapper.FromView(store.View(), carts.drain(c)))
}

// CartAPI serves the installation's cart.
type CartAPI struct {
	carts Carts
}

func NewCartAPI(carts Carts) CartAPI {
	return CartAPI{carts: carts}
}

// Get /v1/cart
func (api *CartAPI) GetCart(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	api.carts.respondCart(c, http.StatusOK, store)
}

// Post /v1/cart/items
// Adds a product to the cart, merging with an existing line
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload cartmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	product, ok := api.carts.product(c, payload.ProductID)
	if !ok {
		return
	}
	if err := store.AddToCart(c.Request.Context(), product, payload.Quantity); err != nil {
		respondError(c, err)
		return
	}
	api.carts.respondCart(c, http.StatusOK, store)
}

// Put /v1/cart/items/:productId
// Overwrites a line's quantity; zero or less removes the line
func (api *CartAPI) UpdateItem(c *gin.Context) {
	var payload cartmapper.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	store.UpdateQuantity(c.Request.Context(), c.Param("productId"), *payload.Quantity)
	api.carts.respondCart(c, http.StatusOK, store)
}

// Delete /v1/cart/items/:productId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	store.RemoveFromCart(c.Request.Context(), c.Param("productId"))
	api.carts.respondCart(c, http.StatusOK, store)
}

// Delete /v1/cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	store.ClearCart(c.Request.Context())
	api.carts.respondCart(c, http.StatusOK, store)
}

package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/Apurer/freshcart-api/internal/domains/cart/application"
)

// WishlistAPI serves the installation's wishlist.
type WishlistAPI struct {
	carts Carts
}

func NewWishlistAPI(carts Carts) WishlistAPI {
	return WishlistAPI{carts: carts}
}

func (api *WishlistAPI) respondWishlist(c *gin.Context, status int, store *cartapp.Store) {
	view := store.View()
	c.JSON(status, cartmapper.FromWishlist(view.InstallationID, view.Wishlist, api.carts.drain(c)))
}

// Get /v1/wishlist
func (api *WishlistAPI) GetWishlist(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	api.respondWishlist(c, http.StatusOK, store)
}

// Post /v1/wishlist
// Adds a product; adding one that is already present changes nothing
func (api *WishlistAPI) AddToWishlist(c *gin.Context) {
	var payload cartmapper.WishlistRequest
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
	added, err := store.AddToWishlist(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	api.respondWishlist(c, status, store)
}

// Post /v1/wishlist/toggle
// Removes the product when present, otherwise adds it
func (api *WishlistAPI) ToggleWishlist(c *gin.Context) {
	var payload cartmapper.WishlistRequest
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
	inWishlist, err := store.ToggleWishlist(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.WishlistMembership{
		ProductID:     product.ID,
		InWishlist:    inWishlist,
		Notifications: cartmapper.FromNotifications(api.carts.drain(c)),
	})
}

// Delete /v1/wishlist/:productId
func (api *WishlistAPI) RemoveFromWishlist(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	store.RemoveFromWishlist(c.Request.Context(), c.Param("productId"))
	api.respondWishlist(c, http.StatusOK, store)
}

// Get /v1/wishlist/:productId
func (api *WishlistAPI) IsInWishlist(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	productID := c.Param("productId")
	c.JSON(http.StatusOK, cartmapper.WishlistMembership{
		ProductID:     productID,
		InWishlist:    store.IsInWishlist(productID),
		Notifications: cartmapper.FromNotifications(api.carts.drain(c)),
	})
}

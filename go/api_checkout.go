package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	cartmapper "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/http/mapper"
	checkoutmapper "github.com/Apurer/freshcart-api/internal/domains/checkout/adapters/http/mapper"
	checkoutports "github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
)

type placedResponse struct {
	checkoutmapper.Placed
	Notifications []cartmapper.Notification `json:"notifications"`
}

// CheckoutAPI drives the two-step checkout of the signed-in user.
type CheckoutAPI struct {
	checkout checkoutports.Service
	carts    Carts
}

func NewCheckoutAPI(checkout checkoutports.Service, carts Carts) CheckoutAPI {
	return CheckoutAPI{checkout: checkout, carts: carts}
}

func checkoutUser(user *accountsdomain.User) *checkoutports.User {
	return &checkoutports.User{ID: user.ID, Name: user.Name, Email: user.Email}
}

// Post /v1/checkout
// Starts a checkout prefilled from the account and profile, or resumes the open one
func (api *CheckoutAPI) Begin(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	flow, err := api.checkout.Begin(c.Request.Context(), checkoutUser(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainFlow(flow))
}

// Get /v1/checkout
func (api *CheckoutAPI) Current(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	flow, err := api.checkout.Current(c.Request.Context(), checkoutUser(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainFlow(flow))
}

// Post /v1/checkout/address
func (api *CheckoutAPI) SubmitAddress(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var payload checkoutmapper.Shipping
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	flow, err := api.checkout.SubmitAddress(c.Request.Context(), checkoutUser(user), checkoutmapper.ToDomainShipping(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainFlow(flow))
}

// Post /v1/checkout/back
func (api *CheckoutAPI) Back(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	flow, err := api.checkout.Back(c.Request.Context(), checkoutUser(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainFlow(flow))
}

// Post /v1/checkout/payment
// Validates the payment step and places the order from the installation's cart.
// A repeated Idempotency-Key replays the first result.
func (api *CheckoutAPI) SubmitPayment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var payload checkoutmapper.Payment
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	placement, err := api.checkout.SubmitPayment(
		c.Request.Context(),
		checkoutUser(user),
		checkoutmapper.ToDomainPayment(payload),
		store,
		c.GetHeader(HeaderIdempotencyKey),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if placement.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, placedResponse{
		Placed:        checkoutmapper.FromPlacement(placement.OrderID, placement.Totals, placement.Replayed),
		Notifications: cartmapper.FromNotifications(api.carts.drain(c)),
	})
}

// Delete /v1/checkout
func (api *CheckoutAPI) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := api.checkout.Cancel(c.Request.Context(), checkoutUser(user)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

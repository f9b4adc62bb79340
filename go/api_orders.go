package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountsdomain "github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	ordersmapper "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/freshcart-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/freshcart-api/internal/shared/errors"
)

// OrderAPI serves order history, confirmation emails and admin status changes.
type OrderAPI struct {
	orders ordersports.Service
}

func NewOrderAPI(orders ordersports.Service) OrderAPI {
	return OrderAPI{orders: orders}
}

func orderUser(user *accountsdomain.User) *ordersports.User {
	return &ordersports.User{ID: user.ID, Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin()}
}

// Get /v1/orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orders, err := api.orders.List(c.Request.Context(), orderUser(user))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrders(orders))
}

// Get /v1/orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	order, err := api.orders.Get(c.Request.Context(), orderUser(user), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrder(order))
}

// Post /v1/orders/:id/confirmation
// Sends the confirmation email. An unknown id falls back to the user's latest order.
func (api *OrderAPI) SendConfirmation(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	order, err := api.orders.SendConfirmation(c.Request.Context(), orderUser(user), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ordersmapper.Confirmation{OrderID: order.ID, Sent: true})
}

// Patch /v1/orders/:id/status
// Admin only
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("admin role required"))
		return
	}
	var payload ordersmapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	status, err := ordersdomain.ParseStatus(payload.Status)
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"status": "unsupported"}).WithDetail(err.Error()))
		return
	}
	order, err := api.orders.UpdateStatus(c.Request.Context(), orderUser(user), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordersmapper.FromDomainOrder(order))
}

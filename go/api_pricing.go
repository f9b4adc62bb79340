package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/http/mapper"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// PricingAPI renders the order summary for the installation's cart.
type PricingAPI struct {
	carts     Carts
	formatter *pricingdomain.Formatter
}

// NewPricingAPI uses the default USD formatter when formatter is nil.
func NewPricingAPI(carts Carts, formatter *pricingdomain.Formatter) PricingAPI {
	if formatter == nil {
		formatter = pricingdomain.MustFormatter(pricingdomain.DefaultCurrency, pricingdomain.DefaultLocale)
	}
	return PricingAPI{carts: carts, formatter: formatter}
}

// Get /v1/pricing/summary
// Subtotal, shipping, tax and total for the current cart
func (api *PricingAPI) GetSummary(c *gin.Context) {
	store, ok := api.carts.store(c)
	if !ok {
		return
	}
	view := store.View()
	totals := pricingdomain.Compute(view.Subtotal)
	c.JSON(http.StatusOK, cartmapper.FromTotals(totals, view.Count, api.formatter))
}

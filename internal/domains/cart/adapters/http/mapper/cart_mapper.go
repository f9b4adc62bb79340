package mapper

import (
	catalogmapper "github.com/Apurer/freshcart-api/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/application"
	"github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// AddItemRequest is the body of POST /cart/items. Quantity defaults to one.
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /cart/items/:productId. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// WishlistRequest is the body of the wishlist add and toggle routes.
type WishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

type Line struct {
	Product   catalogmapper.Product `json:"product"`
	Quantity  int                   `json:"quantity"`
	LineTotal string                `json:"lineTotal"`
}

// Cart is the cart body. Notifications carries the toasts raised since the last response.
type Cart struct {
	InstallationID string         `json:"installationId"`
	Items          []Line         `json:"items"`
	Subtotal       string         `json:"subtotal"`
	Count          int            `json:"count"`
	Notifications  []Notification `json:"notifications"`
}

type Wishlist struct {
	InstallationID string                  `json:"installationId"`
	Items          []catalogmapper.Product `json:"items"`
	Notifications  []Notification          `json:"notifications"`
}

// WishlistMembership answers GET /wishlist/:productId and the toggle route.
type WishlistMembership struct {
	ProductID     string         `json:"productId"`
	InWishlist    bool           `json:"inWishlist"`
	Notifications []Notification `json:"notifications"`
}

// Summary is the order summary rendered beside the cart and at checkout.
type Summary struct {
	Subtotal          string `json:"subtotal"`
	Shipping          string `json:"shipping"`
	Tax               string `json:"tax"`
	Total             string `json:"total"`
	FreeShipping      bool   `json:"freeShipping"`
	Currency          string `json:"currency"`
	FormattedSubtotal string `json:"formattedSubtotal"`
	FormattedShipping string `json:"formattedShipping"`
	FormattedTax      string `json:"formattedTax"`
	FormattedTotal    string `json:"formattedTotal"`
	Count             int    `json:"count"`
}

func FromNotifications(in []ports.Notification) []Notification {
	out := make([]Notification, 0, len(in))
	for _, n := range in {
		out = append(out, Notification{Title: n.Title, Description: n.Description, Variant: string(n.Variant)})
	}
	return out
}

func FromLines(lines []domain.Line) []Line {
	out := make([]Line, 0, len(lines))
	for i := range lines {
		out = append(out, Line{
			Product:   catalogmapper.FromDomainProduct(&lines[i].Product),
			Quantity:  lines[i].Quantity,
			LineTotal: lines[i].Total().StringFixed(2),
		})
	}
	return out
}

func FromView(view application.View, notifications []ports.Notification) Cart {
	return Cart{
		InstallationID: view.InstallationID,
		Items:          FromLines(view.Lines),
		Subtotal:       view.Subtotal.StringFixed(2),
		Count:          view.Count,
		Notifications:  FromNotifications(notifications),
	}
}

func FromWishlist(installationID string, items []catalogdomain.Product, notifications []ports.Notification) Wishlist {
	products := make([]catalogmapper.Product, 0, len(items))
	for i := range items {
		products = append(products, catalogmapper.FromDomainProduct(&items[i]))
	}
	return Wishlist{InstallationID: installationID, Items: products, Notifications: FromNotifications(notifications)}
}

// FromTotals renders totals with both machine and display amounts.
func FromTotals(totals pricingdomain.Totals, count int, formatter *pricingdomain.Formatter) Summary {
	return Summary{
		Subtotal:          totals.Subtotal.StringFixed(2),
		Shipping:          totals.Shipping.StringFixed(2),
		Tax:               totals.Tax.StringFixed(2),
		Total:             totals.Total.StringFixed(2),
		FreeShipping:      totals.Shipping.IsZero(),
		Currency:          formatter.Code(),
		FormattedSubtotal: formatter.Format(totals.Subtotal),
		FormattedShipping: formatter.Format(totals.Shipping),
		FormattedTax:      formatter.Format(totals.Tax),
		FormattedTotal:    formatter.Format(totals.Total),
		Count:             count,
	}
}

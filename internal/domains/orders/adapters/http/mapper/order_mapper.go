package mapper

import (
	"time"

	checkoutdomain "github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
)

type Line struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"price"`
	LineTotal    string `json:"lineTotal"`
}

// Order is the persisted order as shown in order history. Amounts are the stored
// values and are never recomputed here.
type Order struct {
	ID              string    `json:"id"`
	ShortID         string    `json:"shortId"`
	Subtotal        string    `json:"subtotal"`
	Shipping        string    `json:"shipping"`
	Tax             string    `json:"tax"`
	Total           string    `json:"total"`
	Status          string    `json:"status"`
	StatusLabel     string    `json:"statusLabel"`
	ShippingAddress string    `json:"shippingAddress"`
	PaymentMethod   string    `json:"paymentMethod"`
	PaymentLabel    string    `json:"paymentLabel"`
	ItemCount       int       `json:"itemCount"`
	CreatedAt       time.Time `json:"createdAt"`
	Items           []Line    `json:"items"`
}

// StatusRequest is the admin status update body.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Confirmation acknowledges a sent confirmation email.
type Confirmation struct {
	OrderID string `json:"orderId"`
	Sent    bool   `json:"sent"`
}

func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]Line, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, Line{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			ProductImage: l.ProductImage,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice.StringFixed(2),
			LineTotal:    l.Total().StringFixed(2),
		})
	}
	return Order{
		ID:              order.ID,
		ShortID:         order.ShortID(),
		Subtotal:        order.Subtotal.StringFixed(2),
		Shipping:        order.Shipping.StringFixed(2),
		Tax:             order.Tax.StringFixed(2),
		Total:           order.Total.StringFixed(2),
		Status:          string(order.Status),
		StatusLabel:     order.Status.Label(),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentLabel:    checkoutdomain.PaymentMethod(order.PaymentMethod).Label(),
		ItemCount:       order.ItemCount(),
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}
}

func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

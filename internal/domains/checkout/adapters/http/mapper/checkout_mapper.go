package mapper

import (
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// Shipping is the address step payload.
type Shipping struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// Payment is the payment step payload. Card fields are accepted on input only.
type Payment struct {
	Method     string `json:"paymentMethod"`
	UpiID      string `json:"upiId,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	NameOnCard string `json:"nameOnCard,omitempty"`
}

// Flow is the checkout state returned to clients. It never carries card data.
type Flow struct {
	Step             string    `json:"step"`
	Shipping         Shipping  `json:"shipping"`
	PaymentMethod    string    `json:"paymentMethod"`
	PaymentLabel     string    `json:"paymentLabel"`
	UpiID            string    `json:"upiId,omitempty"`
	FormattedAddress string    `json:"formattedAddress"`
	LastError        string    `json:"lastError,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Placed is the body of a successful payment submit.
type Placed struct {
	OrderID  string `json:"orderId"`
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
	Replayed bool   `json:"replayed"`
}

func ToDomainShipping(in Shipping) domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
	}
}

func FromDomainShipping(d domain.ShippingDetails) Shipping {
	return Shipping{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Street:    d.Street,
		City:      d.City,
		State:     d.State,
		ZipCode:   d.ZipCode,
	}
}

// ToDomainPayment keeps the raw method string; the domain validator reports unsupported values.
func ToDomainPayment(in Payment) domain.PaymentSelection {
	selection := domain.PaymentSelection{WalletID: in.UpiID}
	if method, err := domain.ParsePaymentMethod(in.Method); err == nil {
		selection.Method = method
	} else {
		selection.Method = domain.PaymentMethod(in.Method)
	}
	if selection.Method == domain.PaymentCard {
		selection.Card = &domain.CardDetails{
			Number: in.CardNumber,
			Expiry: in.ExpiryDate,
			CVV:    in.CVV,
			Name:   in.NameOnCard,
		}
	}
	return selection
}

func FromDomainFlow(flow *domain.Flow) Flow {
	if flow == nil {
		return Flow{}
	}
	return Flow{
		Step:             string(flow.Step),
		Shipping:         FromDomainShipping(flow.Shipping),
		PaymentMethod:    string(flow.Payment.Method),
		PaymentLabel:     flow.Payment.Method.Label(),
		UpiID:            flow.Payment.WalletID,
		FormattedAddress: flow.Shipping.FormattedAddress(),
		LastError:        flow.LastError,
		UpdatedAt:        flow.UpdatedAt,
	}
}

func FromPlacement(orderID string, totals pricingdomain.Totals, replayed bool) Placed {
	return Placed{
		OrderID:  orderID,
		Subtotal: totals.Subtotal.StringFixed(2),
		Shipping: totals.Shipping.StringFixed(2),
		Tax:      totals.Tax.StringFixed(2),
		Total:    totals.Total.StringFixed(2),
		Replayed: replayed,
	}
}

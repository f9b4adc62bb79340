package domain

import (
	"errors"
	"strings"
)

// PaymentMethod is the closed set of payment options offered at checkout.
type PaymentMethod string

const (
	PaymentCard      PaymentMethod = "card"
	PaymentPayPal    PaymentMethod = "paypal"
	PaymentApplePay  PaymentMethod = "apple"
	PaymentPhonePe   PaymentMethod = "phonepe"
	PaymentPaytm     PaymentMethod = "paytm"
	PaymentGooglePay PaymentMethod = "googlepay"
	PaymentCash      PaymentMethod = "cash"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

var paymentLabels = map[PaymentMethod]string{
	PaymentCard:      "Credit/Debit Card",
	PaymentPayPal:    "PayPal",
	PaymentApplePay:  "Apple Pay",
	PaymentPhonePe:   "PhonePe UPI",
	PaymentPaytm:     "Paytm UPI",
	PaymentGooglePay: "Google Pay UPI",
	PaymentCash:      "Cash on Delivery",
}

// ParsePaymentMethod accepts the wire value, case-insensitively.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", ErrUnknownPaymentMethod
	}
	return m, nil
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentLabels[m]
	return ok
}

// IsWallet reports the UPI-style methods that need a wallet id.
func (m PaymentMethod) IsWallet() bool {
	switch m {
	case PaymentPhonePe, PaymentPaytm, PaymentGooglePay:
		return true
	}
	return false
}

func (m PaymentMethod) IsCashOnDelivery() bool {
	return m == PaymentCash
}

// Label is the customer-facing name. Unknown values are capitalised.
func (m PaymentMethod) Label() string {
	if label, ok := paymentLabels[m]; ok {
		return label
	}
	s := string(m)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CardDetails are collected for the card method and then discarded.
type CardDetails struct {
	Number string
	Expiry string
	CVV    string
	Name   string
}

// PaymentSelection is the payment step of checkout.
type PaymentSelection struct {
	Method   PaymentMethod
	WalletID string
	Card     *CardDetails `json:"-"`
}

// Validate applies the per-method field requirements.
func (p PaymentSelection) Validate() error {
	verr := &ValidationError{}
	if !p.Method.Valid() {
		verr.add("paymentMethod", "unsupported")
		return verr
	}
	switch {
	case p.Method.IsWallet():
		if strings.TrimSpace(p.WalletID) == "" {
			verr.add("upiId", "required")
		}
	case p.Method == PaymentCard:
		card := p.Card
		if card == nil {
			card = &CardDetails{}
		}
		for _, field := range []struct {
			name  string
			value string
		}{
			{"cardNumber", card.Number},
			{"expiryDate", card.Expiry},
			{"cvv", card.CVV},
			{"nameOnCard", card.Name},
		} {
			if strings.TrimSpace(field.value) == "" {
				verr.add(field.name, "required")
			}
		}
	}
	return verr.orNil()
}

// Sanitized drops raw card data and any wallet id the method does not use.
func (p PaymentSelection) Sanitized() PaymentSelection {
	out := PaymentSelection{Method: p.Method}
	if p.Method.IsWallet() {
		out.WalletID = strings.TrimSpace(p.WalletID)
	}
	return out
}

// Package domain derives display totals from a cart subtotal.
//
// All arithmetic uses fixed-point decimals. Tax is rounded to cents before it is
// added to the total so the persisted order total always equals the sum of its
// displayed parts.
package domain

import "github.com/shopspring/decimal"

// Pricing configuration. Values are expressed as strings so they parse exactly.
const (
	FreeShippingThresholdValue = "50.00"
	FlatShippingFeeValue       = "4.99"
	TaxRateValue               = "0.07"

	// CentsPlaces is the display rounding applied to every monetary amount.
	CentsPlaces int32 = 2
)

var (
	// FreeShippingThreshold is compared with a strict greater-than.
	FreeShippingThreshold = decimal.RequireFromString(FreeShippingThresholdValue)
	FlatShippingFee       = decimal.RequireFromString(FlatShippingFeeValue)
	TaxRate               = decimal.RequireFromString(TaxRateValue)
)

// Totals is the frozen breakdown of a checkout.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Shipping returns zero above the free shipping threshold, otherwise the flat fee.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

// Tax applies the flat rate and rounds to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(CentsPlaces)
}

// Total sums the parts without further rounding.
func Total(subtotal, shipping, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Add(tax)
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Compute derives the full breakdown for a subtotal.
func Compute(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(CentsPlaces)
	shipping := Shipping(subtotal)
	tax := Tax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    Total(subtotal, shipping, tax),
	}
}

// Consistent reports whether total equals subtotal + shipping + tax.
func (t Totals) Consistent() bool {
	return Total(t.Subtotal, t.Shipping, t.Tax).Equal(t.Total)
}

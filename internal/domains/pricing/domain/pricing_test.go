package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func TestShipping_StrictThreshold(t *testing.T) {
	require.True(t, Shipping(dec(t, "50.00")).Equal(dec(t, "4.99")), "subtotal equal to threshold pays shipping")
	require.True(t, Shipping(dec(t, "50.01")).IsZero())
	require.True(t, Shipping(dec(t, "0")).Equal(dec(t, "4.99")))
}

func TestTax_Rounding(t *testing.T) {
	require.Equal(t, "7.00", Tax(dec(t, "100.00")).StringFixed(2))
	require.Equal(t, "0.91", Tax(dec(t, "12.98")).StringFixed(2))
}

func TestCompute(t *testing.T) {
	totals := Compute(dec(t, "100.00"))
	require.Equal(t, "100.00", totals.Subtotal.StringFixed(2))
	require.True(t, totals.Shipping.IsZero())
	require.Equal(t, "7.00", totals.Tax.StringFixed(2))
	require.Equal(t, "107.00", totals.Total.StringFixed(2))
	require.True(t, totals.Consistent())
}

func TestCompute_BelowThreshold(t *testing.T) {
	totals := Compute(dec(t, "12.98"))
	require.Equal(t, "4.99", totals.Shipping.StringFixed(2))
	require.Equal(t, "0.91", totals.Tax.StringFixed(2))
	require.Equal(t, "18.88", totals.Total.StringFixed(2))
	require.True(t, totals.Consistent())
}

func TestLineTotal_AvoidsFloatDrift(t *testing.T) {
	sum := LineTotal(dec(t, "0.10"), 3)
	require.True(t, sum.Equal(dec(t, "0.30")))

	subtotal := LineTotal(dec(t, "3.99"), 2).Add(LineTotal(dec(t, "5.00"), 1))
	require.Equal(t, "12.98", subtotal.StringFixed(2))
}

func TestTotalsConsistent_DetectsDrift(t *testing.T) {
	totals := Compute(dec(t, "20.00"))
	totals.Total = totals.Total.Add(dec(t, "0.01"))
	require.False(t, totals.Consistent())
}

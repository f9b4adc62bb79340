package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "en-US"
)

// Formatter renders monetary amounts for a configured ISO currency and locale.
type Formatter struct {
	unit      currency.Unit
	tag       language.Tag
	scale     int
	separator string
	printer   *message.Printer
}

// NewFormatter parses the ISO 4217 code and BCP 47 locale. Empty values use the defaults.
func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	printer := message.NewPrinter(tag)
	return &Formatter{
		unit:      unit,
		tag:       tag,
		scale:     scale,
		separator: decimalSeparator(printer),
		printer:   printer,
	}, nil
}

// MustFormatter panics on invalid configuration. Intended for tests and defaults.
func MustFormatter(currencyCode, locale string) *Formatter {
	f, err := NewFormatter(currencyCode, locale)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the ISO currency code, e.g. "USD".
func (f *Formatter) Code() string {
	return f.unit.String()
}

// Symbol returns the narrow locale symbol, e.g. "$" or "₹".
func (f *Formatter) Symbol() string {
	return f.printer.Sprint(currency.NarrowSymbol(f.unit))
}

// Number renders the amount with locale grouping and the currency's standard scale.
// Digits come from the decimal string, so no precision is lost to float64.
func (f *Formatter) Number(amount decimal.Decimal) string {
	rounded := amount.Round(int32(f.scale))
	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(int32(f.scale)), ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return rounded.StringFixed(int32(f.scale))
	}
	out := f.printer.Sprint(number.Decimal(units))
	if frac != "" {
		out += f.separator + frac
	}
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}

// decimalSeparator reads the locale's separator from a rendered 1.5.
func decimalSeparator(printer *message.Printer) string {
	sample := printer.Sprint(number.Decimal(1.5, number.Scale(1)))
	_, first := utf8.DecodeRuneInString(sample)
	_, last := utf8.DecodeLastRuneInString(sample)
	if len(sample) <= first+last {
		return "."
	}
	return sample[first : len(sample)-last]
}

// Format renders symbol and number, e.g. "$12.98".
func (f *Formatter) Format(amount decimal.Decimal) string {
	return f.Symbol() + f.Number(amount)
}

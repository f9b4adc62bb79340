package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

var (
	ErrNilProduct      = errors.New("product is required")
	ErrInvalidQuantity = errors.New("quantity must be at least one")
)

// Line pairs a product snapshot with a quantity of at least one.
type Line struct {
	Product  catalogdomain.Product
	Quantity int
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product id, in insertion order.
type Cart struct {
	lines []Line
}

// NewCart rebuilds a cart from stored lines. Duplicate products are merged and
// lines with a non-positive quantity are dropped.
func NewCart(lines ...Line) *Cart {
	c := &Cart{}
	for _, line := range lines {
		if line.Quantity < 1 || line.Product.ID == "" {
			continue
		}
		product := line.Product
		_ = c.Add(&product, line.Quantity)
	}
	return c
}

// Add increments an existing line or appends a new one. Stock is not checked here.
func (c *Cart) Add(product *catalogdomain.Product, quantity int) error {
	if product == nil {
		return ErrNilProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if i := c.index(product.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return nil
	}
	c.lines = append(c.lines, Line{Product: *product.Clone(), Quantity: quantity})
	return nil
}

// Remove deletes the line if present and reports whether anything changed.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// UpdateQuantity overwrites the quantity; zero or less removes the line.
// It reports whether the cart changed.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		line.Product = *line.Product.Clone()
		out = append(out, line)
	}
	return out
}

// Line returns the line for a product.
func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Subtotal sums unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Total())
	}
	return total
}

// Count sums quantities, which differs from the number of lines.
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

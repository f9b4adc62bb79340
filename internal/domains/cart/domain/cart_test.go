package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

func product(id, price string) *catalogdomain.Product {
	return &catalogdomain.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price), Stock: 10}
}

func TestCartAdd_MergesSameProduct(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(product("1", "3.99"), 2))
	require.NoError(t, c.Add(product("1", "3.99"), 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
}

func TestCartAdd_RejectsInvalidInput(t *testing.T) {
	c := NewCart()
	require.ErrorIs(t, c.Add(nil, 1), ErrNilProduct)
	require.ErrorIs(t, c.Add(product("1", "1.00"), 0), ErrInvalidQuantity)
	require.True(t, c.IsEmpty())
}

func TestCartAdd_DoesNotClampToStock(t *testing.T) {
	c := NewCart()
	p := product("1", "1.00")
	p.Stock = 1
	require.NoError(t, c.Add(p, 7))
	line, ok := c.Line("1")
	require.True(t, ok)
	require.Equal(t, 7, line.Quantity)
}

func TestCartUpdateQuantityZeroRemoves(t *testing.T) {
	viaUpdate := NewCart()
	require.NoError(t, viaUpdate.Add(product("1", "3.99"), 2))
	require.NoError(t, viaUpdate.Add(product("2", "5.00"), 1))
	require.True(t, viaUpdate.UpdateQuantity("1", 0))

	viaRemove := NewCart()
	require.NoError(t, viaRemove.Add(product("1", "3.99"), 2))
	require.NoError(t, viaRemove.Add(product("2", "5.00"), 1))
	require.True(t, viaRemove.Remove("1"))

	require.Equal(t, viaRemove.Lines(), viaUpdate.Lines())
}

func TestCartUpdateQuantityOverwrites(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(product("1", "3.99"), 2))
	require.True(t, c.UpdateQuantity("1", 9))
	require.Equal(t, 9, c.Count())
	require.False(t, c.UpdateQuantity("missing", 3))
}

func TestCartRemoveMissingIsNoop(t *testing.T) {
	c := NewCart()
	require.False(t, c.Remove("nope"))
}

func TestCartSubtotalAndCount(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(product("1", "3.99"), 2))
	require.NoError(t, c.Add(product("2", "5.00"), 1))

	require.Equal(t, "12.98", c.Subtotal().StringFixed(2))
	require.Equal(t, 3, c.Count())
	require.Len(t, c.Lines(), 2)
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(product("b", "1.00"), 1))
	require.NoError(t, c.Add(product("a", "1.00"), 1))
	require.NoError(t, c.Add(product("b", "1.00"), 1))

	lines := c.Lines()
	require.Equal(t, "b", lines[0].Product.ID)
	require.Equal(t, "a", lines[1].Product.ID)
}

func TestNewCart_MergesAndDropsInvalidLines(t *testing.T) {
	c := NewCart(
		Line{Product: *product("1", "1.00"), Quantity: 1},
		Line{Product: *product("1", "1.00"), Quantity: 2},
		Line{Product: *product("2", "1.00"), Quantity: 0},
	)
	require.Len(t, c.Lines(), 1)
	require.Equal(t, 3, c.Count())
}

func TestCartClear(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(product("1", "1.00"), 1))
	c.Clear()
	require.True(t, c.IsEmpty())
	require.True(t, c.Subtotal().IsZero())
}

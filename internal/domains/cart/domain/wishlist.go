package domain

import (
	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

// Wishlist is an ordered set of full product snapshots keyed by product id.
type Wishlist struct {
	items []catalogdomain.Product
}

// NewWishlist rebuilds a wishlist, dropping duplicates.
func NewWishlist(products ...catalogdomain.Product) *Wishlist {
	w := &Wishlist{}
	for i := range products {
		if products[i].ID == "" {
			continue
		}
		w.Add(&products[i])
	}
	return w
}

// Add inserts the product when absent and reports whether it was inserted.
func (w *Wishlist) Add(product *catalogdomain.Product) bool {
	if product == nil || w.Contains(product.ID) {
		return false
	}
	w.items = append(w.items, *product.Clone())
	return true
}

// Toggle removes the product when present, otherwise adds it.
// It returns true when the product ends up in the wishlist.
func (w *Wishlist) Toggle(product *catalogdomain.Product) bool {
	if product == nil {
		return false
	}
	if w.Remove(product.ID) {
		return false
	}
	return w.Add(product)
}

// Remove deletes the product and reports whether it was present.
func (w *Wishlist) Remove(productID string) bool {
	for i := range w.items {
		if w.items[i].ID == productID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains is a pure membership query.
func (w *Wishlist) Contains(productID string) bool {
	for i := range w.items {
		if w.items[i].ID == productID {
			return true
		}
	}
	return false
}

// Items returns copies of the stored products.
func (w *Wishlist) Items() []catalogdomain.Product {
	out := make([]catalogdomain.Product, 0, len(w.items))
	for i := range w.items {
		out = append(out, *w.items[i].Clone())
	}
	return out
}

// Len returns the number of products.
func (w *Wishlist) Len() int {
	return len(w.items)
}

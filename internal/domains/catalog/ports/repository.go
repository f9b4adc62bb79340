package ports

import (
	"context"
	"errors"

	"github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

// ErrNotFound indicates the product does not exist in the catalog.
var ErrNotFound = errors.New("product not found")

// Filter narrows catalog listings. Zero values match everything.
type Filter struct {
	Category    string
	Query       string
	ExpressOnly bool
}

// Repository exposes read access to catalog products.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

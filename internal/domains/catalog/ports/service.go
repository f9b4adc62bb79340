package ports

import (
	"context"

	"github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to transport adapters.
type Service interface {
	List(ctx context.Context, filter Filter) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

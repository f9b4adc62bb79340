package ports

import (
	"context"
	"errors"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
)

// ErrNotFound indicates that an order was not found.
var ErrNotFound = errors.New("order not found")

// Repository persists orders and their lines.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateLines(ctx context.Context, orderID string, lines []domain.Line) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	LatestForUser(ctx context.Context, userID string) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	// Delete removes the order and its lines. Used to compensate a failed placement.
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn against a repository bound to a single transaction.
// A non-nil error from fn rolls every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

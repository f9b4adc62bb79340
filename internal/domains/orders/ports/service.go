package ports

import (
	"context"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
)

// Service exposes order operations to transports.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
	// Replay returns the order recorded under key, or nil when there is none.
	Replay(ctx context.Context, user *User, key string) (*SubmitResult, error)
	Get(ctx context.Context, user *User, id string) (*domain.Order, error)
	List(ctx context.Context, user *User) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, user *User, id string, status domain.Status) (*domain.Order, error)
	SendConfirmation(ctx context.Context, user *User, id string) (*domain.Order, error)
}

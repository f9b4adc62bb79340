package ports

import (
	"context"
	"errors"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email is already registered")
	ErrProfileNotFound = errors.New("profile not found")
)

// Repository persists users keyed by id with a unique email.
type Repository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProfileRepository persists one profile per user.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
}

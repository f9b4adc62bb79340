package ports

import (
	"context"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User    *domain.User
	Session domain.Session
}

// Service exposes account use cases to adapters.
type Service interface {
	Register(ctx context.Context, in Registration) (*AuthResult, error)
	Login(ctx context.Context, in Credentials) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error)
	SyncShippingProfile(ctx context.Context, profile domain.Profile) error
}

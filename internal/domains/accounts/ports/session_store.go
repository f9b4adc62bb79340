package ports

import (
	"context"
	"errors"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts bearer session persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes expired sessions and reports how many were deleted.
	PurgeExpired(ctx context.Context) (int64, error)
}

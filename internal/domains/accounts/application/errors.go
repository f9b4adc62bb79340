package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid account input")
	// ErrAuthentication wraps login failures.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnauthenticated is returned for missing, unknown or expired sessions.
	ErrUnauthenticated = errors.New("not signed in")
	ErrEmailTaken      = ports.ErrEmailTaken
	ErrNotFound        = errors.New("account not found")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrEmptyPassword):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, ports.ErrProfileNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

// ConfirmationService emails the confirmation for a committed order.
type ConfirmationService struct {
	repo   ports.Repository
	mailer ports.ConfirmationMailer
}

func NewConfirmationService(repo ports.Repository, mailer ports.ConfirmationMailer) *ConfirmationService {
	return &ConfirmationService{repo: repo, mailer: mailer}
}

// Send looks the order up by id for this user, falling back to the user's
// latest order, and mails it. A mail failure never touches the order.
func (c *ConfirmationService) Send(ctx context.Context, user *ports.User, orderID string) (*domain.Order, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrUnauthenticated
	}
	order, err := c.resolve(ctx, user.ID, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	if c.mailer == nil {
		return order, fmt.Errorf("%w: no mailer configured", ErrEmailSendFailed)
	}
	if err := c.mailer.SendOrderConfirmation(ctx, ports.ConfirmationEmail{
		Order:         order,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	}); err != nil {
		return order, fmt.Errorf("%w: %w", ErrEmailSendFailed, err)
	}
	return order, nil
}

func (c *ConfirmationService) resolve(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if orderID != "" {
		order, err := c.repo.GetByID(ctx, orderID)
		switch {
		case err == nil && order.UserID == userID:
			return order, nil
		case err != nil && !errors.Is(err, ports.ErrNotFound):
			return nil, err
		}
	}
	order, err := c.repo.LatestForUser(ctx, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

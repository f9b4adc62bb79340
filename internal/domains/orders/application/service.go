package application

import (
	"context"
	"strings"
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

// Service orchestrates order use cases.
type Service struct {
	repo         ports.Repository
	pipeline     *Pipeline
	confirmation *ConfirmationService
	clock        func() time.Time
}

func NewService(repo ports.Repository, pipeline *Pipeline, confirmation *ConfirmationService) *Service {
	return &Service{repo: repo, pipeline: pipeline, confirmation: confirmation, clock: time.Now}
}

// Submit runs the order submission pipeline.
func (s *Service) Submit(ctx context.Context, in ports.SubmitInput) (*ports.SubmitResult, error) {
	return s.pipeline.Submit(ctx, in)
}

func (s *Service) Replay(ctx context.Context, user *ports.User, key string) (*ports.SubmitResult, error) {
	return s.pipeline.Replay(ctx, user, key)
}

// Get returns an order owned by the user. Admins may read any order.
func (s *Service) Get(ctx context.Context, user *ports.User, id string) (*domain.Order, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrUnauthenticated
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if order.UserID != user.ID && !user.IsAdmin {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, user *ports.User) ([]*domain.Order, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.repo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, user *ports.User, id string, status domain.Status) (*domain.Order, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrUnauthenticated
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := order.UpdateStatus(status, s.clock().UTC()); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, order.Status)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// SendConfirmation emails the confirmation for the order.
func (s *Service) SendConfirmation(ctx context.Context, user *ports.User, id string) (*domain.Order, error) {
	return s.confirmation.Send(ctx, user, id)
}

var _ ports.Service = (*Service)(nil)

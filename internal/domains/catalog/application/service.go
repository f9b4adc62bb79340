package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/catalog/ports"
)

// ErrInvalidInput signals a malformed catalog query.
var ErrInvalidInput = errors.New("invalid catalog input")

// Service serves the static product catalog.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ports.Filter) ([]*domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrMissingID)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

var _ ports.Service = (*Service)(nil)

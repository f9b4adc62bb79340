package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

// PlacementOption configures Placement.
type PlacementOption func(*Placement)

// WithTransactor lets order and lines be written in one transaction.
func WithTransactor(tx ports.Transactor) PlacementOption {
	return func(p *Placement) {
		p.tx = tx
	}
}

// WithProfileWriter enables the best-effort profile sync step.
func WithProfileWriter(w ports.ProfileWriter) PlacementOption {
	return func(p *Placement) {
		p.profiles = w
	}
}

func WithPlacementLogger(logger *slog.Logger) PlacementOption {
	return func(p *Placement) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Placement holds the side-effecting steps of placing an order. Each step
// classifies its own failure so callers can report the step that broke.
type Placement struct {
	repo     ports.Repository
	tx       ports.Transactor
	profiles ports.ProfileWriter
	logger   *slog.Logger
}

func NewPlacement(repo ports.Repository, opts ...PlacementOption) *Placement {
	p := &Placement{repo: repo, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run executes profile sync, order create and lines create in order.
// With atomic writes the header never outlives a lines failure: a transaction
// is used when available, otherwise the header is deleted again.
func (p *Placement) Run(ctx context.Context, cmd ports.PlacementCommand) (*domain.Order, error) {
	if cmd.Order == nil {
		return nil, errors.New("placement requires an order")
	}
	order := cmd.Order
	if err := p.SyncProfile(ctx, order.UserID, cmd.Profile); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "profile sync failed, continuing with order",
			slog.String("user.id", order.UserID), slog.String("order.id", order.ID), slog.String("error", err.Error()))
	}

	if cmd.AtomicWrites && p.tx != nil {
		if err := p.CreateAtomically(ctx, order); err != nil {
			return nil, err
		}
		return order, nil
	}

	if err := p.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := p.CreateLines(ctx, order.ID, order.Lines); err != nil {
		if cmd.AtomicWrites {
			p.compensate(ctx, order.ID)
		}
		return nil, err
	}
	return order, nil
}

// SyncProfile writes the shipping profile. A missing writer is a no-op.
func (p *Placement) SyncProfile(ctx context.Context, userID string, profile ports.ShippingProfile) error {
	if p.profiles == nil {
		return nil
	}
	return p.profiles.SyncShippingProfile(ctx, userID, profile)
}

// CreateOrder inserts the order header.
func (p *Placement) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := p.repo.CreateOrder(ctx, order); err != nil {
		return fmt.Errorf("%w: %w", ErrOrderCreateFailed, err)
	}
	return nil
}

// CreateLines inserts the order lines.
func (p *Placement) CreateLines(ctx context.Context, orderID string, lines []domain.Line) error {
	if err := p.repo.CreateLines(ctx, orderID, lines); err != nil {
		return fmt.Errorf("%w: %w", ErrOrderLinesFailed, err)
	}
	return nil
}

// DeleteOrder removes a header left behind by a failed lines write.
func (p *Placement) DeleteOrder(ctx context.Context, orderID string) error {
	err := p.repo.Delete(ctx, orderID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	return err
}

// CreateAtomically writes header and lines in one transaction.
func (p *Placement) CreateAtomically(ctx context.Context, order *domain.Order) error {
	if p.tx == nil {
		return fmt.Errorf("%w: no transactor configured", ErrOrderCreateFailed)
	}
	err := p.tx.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		if err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("%w: %w", ErrOrderCreateFailed, err)
		}
		if err := repo.CreateLines(ctx, order.ID, order.Lines); err != nil {
			return fmt.Errorf("%w: %w", ErrOrderLinesFailed, err)
		}
		return nil
	})
	if err != nil && FailedStep(err) == "" {
		return fmt.Errorf("%w: %w", ErrOrderCreateFailed, err)
	}
	return err
}

func (p *Placement) compensate(ctx context.Context, orderID string) {
	if err := p.DeleteOrder(context.WithoutCancel(ctx), orderID); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "failed to remove orphaned order header",
			slog.String("order.id", orderID), slog.String("error", err.Error()))
		return
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "removed orphaned order header", slog.String("order.id", orderID))
}

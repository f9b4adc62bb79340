package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
)

var (
	ErrInvalidInput    = errors.New("invalid checkout input")
	ErrUnauthenticated = errors.New("sign in to check out")
	ErrNotStarted      = ports.ErrFlowNotFound
)

// Option configures the Service.
type Option func(*Service)

// WithProfileSource enables prefilling the address step from the stored profile.
func WithProfileSource(p ports.ProfileSource) Option {
	return func(s *Service) {
		s.profiles = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

var _ ports.Service = (*Service)(nil)

// Service drives the address and payment steps and hands the final draft to order placement.
type Service struct {
	flows    ports.FlowStore
	placer   ports.OrderPlacer
	profiles ports.ProfileSource
	logger   *slog.Logger
	clock    func() time.Time
}

func NewService(flows ports.FlowStore, placer ports.OrderPlacer, opts ...Option) *Service {
	s := &Service{
		flows:  flows,
		placer: placer,
		logger: slog.New(slog.DiscardHandler),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Begin returns the user's flow, starting a seeded one if none exists.
func (s *Service) Begin(ctx context.Context, user *ports.User) (*domain.Flow, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	flow, err := s.flows.Get(ctx, user.ID)
	if err == nil {
		return flow, nil
	}
	if !errors.Is(err, ports.ErrFlowNotFound) {
		return nil, err
	}
	flow = domain.NewFlow(user.ID, s.seed(ctx, user), s.clock().UTC())
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow.Clone(), nil
}

// Current returns the flow without creating one.
func (s *Service) Current(ctx context.Context, user *ports.User) (*domain.Flow, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	return s.flows.Get(ctx, user.ID)
}

// SubmitAddress records the address and moves to the payment step when it is complete.
func (s *Service) SubmitAddress(ctx context.Context, user *ports.User, details domain.ShippingDetails) (*domain.Flow, error) {
	flow, err := s.Current(ctx, user)
	if err != nil {
		return nil, err
	}
	verr := flow.SubmitAddress(details, s.clock().UTC())
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	if verr != nil {
		return flow, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}
	return flow, nil
}

// Back returns to the address step.
func (s *Service) Back(ctx context.Context, user *ports.User) (*domain.Flow, error) {
	flow, err := s.Current(ctx, user)
	if err != nil {
		return nil, err
	}
	flow.Back(s.clock().UTC())
	if err := s.flows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// SubmitPayment validates the payment step and places the order.
// On success the flow is discarded. On failure it stays on the payment step
// with the error recorded so the customer can retry. A retry carrying the key
// of an order that was already placed replays that order even though the
// flow is gone.
func (s *Service) SubmitPayment(ctx context.Context, user *ports.User, selection domain.PaymentSelection, cart ports.Cart, idempotencyKey string) (ports.Placement, error) {
	key := strings.TrimSpace(idempotencyKey)
	flow, err := s.Current(ctx, user)
	if errors.Is(err, ports.ErrFlowNotFound) && key != "" {
		placement, found, replayErr := s.placer.ReplayOrder(ctx, *user, key)
		if replayErr != nil {
			return ports.Placement{}, replayErr
		}
		if found {
			return placement, nil
		}
	}
	if err != nil {
		return ports.Placement{}, err
	}
	draft, verr := flow.SubmitPayment(selection, s.clock().UTC())
	if verr != nil {
		if err := s.flows.Save(ctx, flow); err != nil {
			return ports.Placement{}, err
		}
		if errors.Is(verr, domain.ErrWrongStep) {
			return ports.Placement{}, verr
		}
		return ports.Placement{}, fmt.Errorf("%w: %w", ErrInvalidInput, verr)
	}

	placement, err := s.placer.PlaceOrder(ctx, ports.PlaceOrderInput{
		User:           *user,
		Draft:          draft,
		Cart:           cart,
		IdempotencyKey: key,
	})
	if err != nil {
		flow.RecordFailure(err, s.clock().UTC())
		if saveErr := s.flows.Save(ctx, flow); saveErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to save checkout after placement error",
				slog.String("user.id", user.ID), slog.String("error", saveErr.Error()))
		}
		return ports.Placement{}, err
	}
	if err := s.flows.Delete(ctx, user.ID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to discard completed checkout",
			slog.String("user.id", user.ID), slog.String("order.id", placement.OrderID), slog.String("error", err.Error()))
	}
	return placement, nil
}

// Cancel discards the user's flow.
func (s *Service) Cancel(ctx context.Context, user *ports.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	err := s.flows.Delete(ctx, user.ID)
	if errors.Is(err, ports.ErrFlowNotFound) {
		return nil
	}
	return err
}

// seed fills names and email from the account, then overlays the stored profile.
// Profile lookup failures only cost the prefill.
func (s *Service) seed(ctx context.Context, user *ports.User) domain.ShippingDetails {
	first, last := domain.SplitName(user.Name)
	details := domain.ShippingDetails{FirstName: first, LastName: last, Email: strings.TrimSpace(user.Email)}
	if s.profiles == nil {
		return details
	}
	profile, err := s.profiles.ShippingProfile(ctx, user.ID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load profile for checkout prefill",
			slog.String("user.id", user.ID), slog.String("error", err.Error()))
		return details
	}
	if first, last := domain.SplitName(profile.FullName); first != "" {
		details.FirstName, details.LastName = first, last
	}
	overlay(&details.Phone, profile.Phone)
	overlay(&details.Street, profile.Street)
	overlay(&details.City, profile.City)
	overlay(&details.State, profile.State)
	overlay(&details.ZipCode, profile.ZipCode)
	return details
}

func overlay(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func requireUser(user *ports.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

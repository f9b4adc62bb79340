package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

const tracerName = "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/observability/service"

// Service decorates the accounts service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core accounts service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.DiscardHandler),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Service) Register(ctx context.Context, in ports.Registration) (*ports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Register")
	defer span.End()
	result, err := s.inner.Register(ctx, in)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register account")
	}
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	s.metrics.recordAuth(ctx, "register", "ok")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "account registered", slog.String("user.id", result.User.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, in ports.Credentials) (*ports.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, in)
	if err != nil {
		outcome := "error"
		if errors.Is(err, accountsapp.ErrAuthentication) {
			outcome = "rejected"
		}
		s.metrics.recordAuth(ctx, "login", outcome)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	span.SetAttributes(attribute.String("user.id", result.User.ID))
	s.metrics.recordAuth(ctx, "login", "ok")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged in", slog.String("user.id", result.User.ID))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	s.metrics.recordAuth(ctx, "logout", "ok")
	return nil
}

// CurrentUser runs on every authenticated request, so only failures other than
// a missing session are logged.
func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.CurrentUser")
	defer span.End()
	user, err := s.inner.CurrentUser(ctx, token)
	if errors.Is(err, accountsapp.ErrUnauthenticated) {
		return nil, err
	}
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve session")
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.GetProfile", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	profile, err := s.inner.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, accountsapp.ErrNotFound) {
		return nil, s.handleError(ctx, span, err, "failed to load profile", slog.String("user.id", userID))
	}
	return profile, err
}

func (s *Service) UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.UpdateProfile", trace.WithAttributes(attribute.String("user.id", profile.UserID)))
	defer span.End()
	updated, err := s.inner.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", profile.UserID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "profile updated", slog.String("user.id", profile.UserID))
	return updated, nil
}

func (s *Service) SyncShippingProfile(ctx context.Context, profile domain.Profile) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.SyncShippingProfile", trace.WithAttributes(attribute.String("user.id", profile.UserID)))
	defer span.End()
	if err := s.inner.SyncShippingProfile(ctx, profile); err != nil {
		return s.handleError(ctx, span, err, "failed to sync shipping profile", slog.String("user.id", profile.UserID))
	}
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	auth metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	auth, _ := m.Int64Counter("accounts.service.auth", metric.WithDescription("Authentication attempts by action and outcome"))
	return serviceMetrics{auth: auth}
}

func (m serviceMetrics) recordAuth(ctx context.Context, action, outcome string) {
	if m.auth == nil {
		return
	}
	m.auth.Add(ctx, 1, metric.WithAttributes(
		attribute.String("auth.action", action),
		attribute.String("auth.outcome", outcome),
	))
}

var _ ports.Service = (*Service)(nil)

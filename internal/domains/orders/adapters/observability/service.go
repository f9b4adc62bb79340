package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersapp "github.com/Apurer/freshcart-api/internal/domains/orders/application"
	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/freshcart-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create the order counters.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
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

// Submit places an order with instrumentation. The failed step, if any, is
// attached to both the span and the failure counter.
func (s *Service) Submit(ctx context.Context, in ports.SubmitInput) (*ports.SubmitResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Submit",
		attribute.String("user.id", userID(in.User)),
		attribute.String("payment.method", string(in.Draft.Payment.Method)),
		attribute.Bool("idempotency.key_present", in.IdempotencyKey != ""),
	)
	defer span.End()

	result, err := s.inner.Submit(ctx, in)
	if err != nil {
		step := ordersapp.FailedStep(err)
		if step != "" {
			span.SetAttributes(attribute.String("order.failed_step", step))
		}
		s.metrics.recordFailed(ctx, step)
		return nil, s.handleError(ctx, span, err, "failed to submit order",
			slog.String("user.id", userID(in.User)), slog.String("step", step))
	}
	if result != nil && result.Order != nil {
		span.SetAttributes(
			attribute.String("order.id", result.Order.ID),
			attribute.Bool("order.replayed", result.Replayed),
		)
		if !result.Replayed {
			s.metrics.recordPlaced(ctx, result.Order.Status)
		}
		s.logInfo(ctx, "order submitted",
			slog.String("order.id", result.Order.ID),
			slog.String("status", string(result.Order.Status)),
			slog.Bool("replayed", result.Replayed))
	}
	return result, nil
}

func (s *Service) Replay(ctx context.Context, user *ports.User, key string) (*ports.SubmitResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Replay", attribute.String("user.id", userID(user)))
	defer span.End()

	result, err := s.inner.Replay(ctx, user, key)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to replay order submit", slog.String("user.id", userID(user)))
	}
	if result != nil && result.Order != nil {
		span.SetAttributes(attribute.String("order.id", result.Order.ID), attribute.Bool("order.replayed", true))
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, user *ports.User, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.Get", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.Get(ctx, user, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, user *ports.User) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.List", attribute.String("user.id", userID(user)))
	defer span.End()

	orders, err := s.inner.List(ctx, user)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user.id", userID(user)))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

// UpdateStatus moves an order through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, user *ports.User, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("order.id", id),
		attribute.String("order.status.requested", string(status)),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", id), slog.String("status", string(status)))
	order, err := s.inner.UpdateStatus(ctx, user, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", id))
	}
	s.metrics.recordStatusChanged(ctx, order.Status)
	return order, nil
}

func (s *Service) SendConfirmation(ctx context.Context, user *ports.User, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.SendConfirmation", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.SendConfirmation(ctx, user, id)
	if err != nil {
		s.metrics.recordEmail(ctx, "error")
		return order, s.handleError(ctx, span, err, "failed to send order confirmation", slog.String("order.id", id))
	}
	s.metrics.recordEmail(ctx, "sent")
	s.logInfo(ctx, "order confirmation sent", slog.String("order.id", order.ID))
	return order, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func userID(user *ports.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}

type serviceMetrics struct {
	placed        metric.Int64Counter
	failed        metric.Int64Counter
	statusChanged metric.Int64Counter
	emails        metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	failed, _ := m.Int64Counter("orders.service.failed", metric.WithDescription("Number of failed order submissions"))
	statusChanged, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of order status changes"))
	emails, _ := m.Int64Counter("orders.service.confirmation_emails", metric.WithDescription("Confirmation email attempts"))
	return serviceMetrics{placed: placed, failed: failed, statusChanged: statusChanged, emails: emails}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.placed, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordFailed(ctx context.Context, step string) {
	if step == "" {
		step = "none"
	}
	addCounter(ctx, m.failed, attribute.String("order.failed_step", step))
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusChanged, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordEmail(ctx context.Context, outcome string) {
	addCounter(ctx, m.emails, attribute.String("email.outcome", outcome))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

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

	cartports "github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

const tracerName = "github.com/Apurer/freshcart-api/internal/domains/cart/adapters/observability/snapshot_store"

// SnapshotStore decorates a snapshot backend with tracing, logging, and metrics.
type SnapshotStore struct {
	inner   cartports.SnapshotStore
	backend string
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics snapshotMetrics
}

type Option func(*SnapshotStore)

func WithLogger(logger *slog.Logger) Option {
	return func(s *SnapshotStore) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *SnapshotStore) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *SnapshotStore) {
		s.metrics = newSnapshotMetrics(m)
	}
}

// New wraps a snapshot backend. backend names it in spans and metrics, e.g. "redis".
func New(inner cartports.SnapshotStore, backend string, opts ...Option) cartports.SnapshotStore {
	s := &SnapshotStore{
		inner:   inner,
		backend: backend,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newSnapshotMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	ctx, span := s.start(ctx, "SnapshotStore.Get", key)
	defer span.End()

	value, err := s.inner.Get(ctx, key)
	if errors.Is(err, cartports.ErrSnapshotNotFound) {
		span.SetAttributes(attribute.Bool("snapshot.hit", false))
		s.metrics.record(ctx, "get", s.backend, "miss")
		return "", err
	}
	if err != nil {
		s.metrics.record(ctx, "get", s.backend, "error")
		return "", s.handleError(ctx, span, err, "failed to read snapshot", slog.String("snapshot.key", key))
	}
	span.SetAttributes(attribute.Bool("snapshot.hit", true), attribute.Int("snapshot.bytes", len(value)))
	s.metrics.record(ctx, "get", s.backend, "hit")
	return value, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	ctx, span := s.start(ctx, "SnapshotStore.Set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("snapshot.bytes", len(value)))
	if err := s.inner.Set(ctx, key, value); err != nil {
		s.metrics.record(ctx, "set", s.backend, "error")
		return s.handleError(ctx, span, err, "failed to write snapshot", slog.String("snapshot.key", key))
	}
	s.metrics.record(ctx, "set", s.backend, "ok")
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "SnapshotStore.Delete", key)
	defer span.End()

	if err := s.inner.Delete(ctx, key); err != nil {
		s.metrics.record(ctx, "delete", s.backend, "error")
		return s.handleError(ctx, span, err, "failed to delete snapshot", slog.String("snapshot.key", key))
	}
	s.metrics.record(ctx, "delete", s.backend, "ok")
	s.logInfo(ctx, "snapshot deleted", slog.String("snapshot.key", key))
	return nil
}

func (s *SnapshotStore) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("snapshot.key", key),
		attribute.String("snapshot.backend", s.backend),
	))
}

func (s *SnapshotStore) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *SnapshotStore) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("snapshot.backend", s.backend), slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type snapshotMetrics struct {
	operations metric.Int64Counter
}

func newSnapshotMetrics(m metric.Meter) snapshotMetrics {
	if m == nil {
		return snapshotMetrics{}
	}
	operations, _ := m.Int64Counter("cart.snapshots.operations", metric.WithDescription("Snapshot store operations by outcome"))
	return snapshotMetrics{operations: operations}
}

func (m snapshotMetrics) record(ctx context.Context, op, backend, outcome string) {
	if m.operations == nil {
		return
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("snapshot.op", op),
		attribute.String("snapshot.backend", backend),
		attribute.String("snapshot.outcome", outcome),
	))
}

var _ cartports.SnapshotStore = (*SnapshotStore)(nil)

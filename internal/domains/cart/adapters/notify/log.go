package notify

import (
	"context"
	"log/slog"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

var _ ports.Notifier = (*Logger)(nil)

// Logger records notifications at debug level and forwards them to an optional next notifier.
type Logger struct {
	logger *slog.Logger
	next   ports.Notifier
}

func NewLogger(logger *slog.Logger, next ports.Notifier) *Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logger{logger: logger, next: next}
}

func (l *Logger) Notify(ctx context.Context, installationID string, n ports.Notification) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, "cart notification",
		slog.String("installation.id", installationID),
		slog.String("notification.title", n.Title),
		slog.String("notification.variant", string(n.Variant)))
	if l.next != nil {
		l.next.Notify(ctx, installationID, n)
	}
}

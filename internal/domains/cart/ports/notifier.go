package ports

import "context"

// Variant classifies a notification for presentation.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient, user-visible message emitted after a mutation.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier delivers notifications to the installation that caused them.
type Notifier interface {
	Notify(ctx context.Context, installationID string, n Notification)
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, Notification) {}

package notify

import (
	"context"
	"sync"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

// DefaultInboxCapacity bounds how many undelivered notifications an installation keeps.
const DefaultInboxCapacity = 20

var _ ports.Notifier = (*Inbox)(nil)

// Inbox buffers notifications per installation until the transport drains them
// into the next response.
type Inbox struct {
	mu       sync.Mutex
	capacity int
	pending  map[string][]ports.Notification
}

// NewInbox builds an inbox. A non-positive capacity uses DefaultInboxCapacity.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &Inbox{capacity: capacity, pending: map[string][]ports.Notification{}}
}

// Notify appends a notification, dropping the oldest when the inbox is full.
func (i *Inbox) Notify(_ context.Context, installationID string, n ports.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	queue := append(i.pending[installationID], n)
	if len(queue) > i.capacity {
		queue = queue[len(queue)-i.capacity:]
	}
	i.pending[installationID] = queue
}

// Drain returns and clears the pending notifications for an installation.
func (i *Inbox) Drain(installationID string) []ports.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	queue := i.pending[installationID]
	delete(i.pending, installationID)
	return queue
}

package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict is returned when a key already belongs to a different submit.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// SubmitReceipt records which order a user's keyed submit produced.
// Keys are scoped per user, so two customers may reuse the same key.
type SubmitReceipt struct {
	UserID      string
	Key         string
	Fingerprint string
	OrderID     string
	PlacedAt    time.Time
}

// Matches reports whether other describes the same submit.
func (r SubmitReceipt) Matches(other SubmitReceipt) bool {
	return r.Fingerprint == other.Fingerprint && r.OrderID == other.OrderID
}

// IdempotencyStore keeps submit receipts so a retried submit replays the first order.
type IdempotencyStore interface {
	// Lookup returns nil, nil when the user never used key.
	Lookup(ctx context.Context, userID, key string) (*SubmitReceipt, error)
	// Record stores receipt unless the key is taken. A taken key returns the stored
	// receipt, together with ErrIdempotencyConflict when it describes another submit.
	Record(ctx context.Context, receipt SubmitReceipt) (*SubmitReceipt, error)
}

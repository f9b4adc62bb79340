package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type receiptKey struct{ userID, key string }

// IdempotencyStore holds submit receipts for the life of the process.
type IdempotencyStore struct {
	mu       sync.Mutex
	receipts map[receiptKey]ports.SubmitReceipt
	now      func() time.Time
}

// NewIdempotencyStore accepts an optional clock; nil uses time.Now.
func NewIdempotencyStore(clock ...func() time.Time) *IdempotencyStore {
	s := &IdempotencyStore{receipts: make(map[receiptKey]ports.SubmitReceipt), now: time.Now}
	if len(clock) > 0 && clock[0] != nil {
		s.now = clock[0]
	}
	return s
}

func (s *IdempotencyStore) Lookup(_ context.Context, userID, key string) (*ports.SubmitReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if receipt, ok := s.receipts[receiptKey{userID, key}]; ok {
		return &receipt, nil
	}
	return nil, nil
}

func (s *IdempotencyStore) Record(_ context.Context, receipt ports.SubmitReceipt) (*ports.SubmitReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := receiptKey{receipt.UserID, receipt.Key}
	if stored, ok := s.receipts[k]; ok {
		if !stored.Matches(receipt) {
			return &stored, ports.ErrIdempotencyConflict
		}
		return &stored, nil
	}
	if receipt.PlacedAt.IsZero() {
		receipt.PlacedAt = s.now()
	}
	s.receipts[k] = receipt
	return &receipt, nil
}

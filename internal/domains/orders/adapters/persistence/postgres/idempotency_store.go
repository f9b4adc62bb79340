package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps submit receipts in order_submit_receipts, keyed by (user_id, key).
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (*ports.SubmitReceipt, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	var rec receiptRecord
	err := s.db.WithContext(ctx).Where("user_id = ? AND key = ?", userID, key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.toReceipt(), nil
}

// Record relies on the composite primary key; a lost race reads the winner back.
func (s *IdempotencyStore) Record(ctx context.Context, receipt ports.SubmitReceipt) (*ports.SubmitReceipt, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	if receipt.PlacedAt.IsZero() {
		receipt.PlacedAt = time.Now().UTC()
	}
	rec := receiptRecord{
		UserID:      receipt.UserID,
		Key:         receipt.Key,
		Fingerprint: receipt.Fingerprint,
		OrderID:     receipt.OrderID,
		PlacedAt:    receipt.PlacedAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return rec.toReceipt(), nil
	}
	stored, err := s.Lookup(ctx, receipt.UserID, receipt.Key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("receipt %s for user %s vanished after conflict", receipt.Key, receipt.UserID)
	}
	if !stored.Matches(receipt) {
		return stored, ports.ErrIdempotencyConflict
	}
	return stored, nil
}

type receiptRecord struct {
	UserID      string    `gorm:"primaryKey;column:user_id;size:36"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;size:128"`
	OrderID     string    `gorm:"column:order_id;size:36"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
}

func (receiptRecord) TableName() string { return "order_submit_receipts" }

func (r receiptRecord) toReceipt() *ports.SubmitReceipt {
	return &ports.SubmitReceipt{
		UserID:      r.UserID,
		Key:         r.Key,
		Fingerprint: r.Fingerprint,
		OrderID:     r.OrderID,
		PlacedAt:    r.PlacedAt,
	}
}

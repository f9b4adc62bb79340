package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore persists snapshots in a PostgreSQL key/value table using GORM.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore wires a PostgreSQL-backed snapshot store. Caller manages DB lifecycle.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

type snapshotRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (snapshotRecord) TableName() string { return "cart_snapshots" }

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}
	var record snapshotRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ports.ErrSnapshotNotFound
		}
		return "", err
	}
	return record.Value, nil
}

// Set upserts the value keyed by snapshot key.
func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := snapshotRecord{Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&snapshotRecord{}, "key = ?", key).Error
}

// PurgeOlderThan removes snapshots untouched since the cutoff.
func (s *SnapshotStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&snapshotRecord{})
	return result.RowsAffected, result.Error
}

func (s *SnapshotStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres snapshot store not configured")
	}
	return nil
}

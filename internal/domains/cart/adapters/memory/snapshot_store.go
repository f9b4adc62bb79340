package memory

import (
	"context"
	"sync"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps snapshots in process memory. Contents are lost on restart.
type SnapshotStore struct {
	values sync.Map
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values.Load(key)
	if !ok {
		return "", ports.ErrSnapshotNotFound
	}
	return value.(string), nil
}

func (s *SnapshotStore) Set(_ context.Context, key, value string) error {
	s.values.Store(key, value)
	return nil
}

func (s *SnapshotStore) Delete(_ context.Context, key string) error {
	s.values.Delete(key)
	return nil
}

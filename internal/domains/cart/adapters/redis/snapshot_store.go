package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// DefaultKeyPrefix namespaces snapshot keys inside a shared Redis database.
const DefaultKeyPrefix = "snapshots:"

// SnapshotStore persists snapshots as Redis strings.
type SnapshotStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures the Redis snapshot store.
type Option func(*SnapshotStore)

// WithTTL expires idle snapshots. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *SnapshotStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *SnapshotStore) {
		s.prefix = prefix
	}
}

// NewSnapshotStore wires a Redis client. Caller owns the client lifecycle.
func NewSnapshotStore(client goredis.UniversalClient, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	if err := s.ensureClient(); err != nil {
		return "", err
	}
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ports.ErrSnapshotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *SnapshotStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis snapshot store not configured")
	}
	return nil
}

package application

import (
	"container/list"
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

const (
	// DefaultRegistryCapacity bounds the number of stores held in memory.
	DefaultRegistryCapacity = 10000
	// DefaultIdleTTL is how long an unused store stays cached.
	DefaultIdleTTL = 30 * time.Minute
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStoreOptions applies opts to every store the registry opens.
func WithStoreOptions(opts ...StoreOption) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// WithCapacity caps the cached stores. The least recently used store is
// dropped first. Zero or less keeps the default.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithIdleTTL drops stores unused for longer than ttl, so the next Get
// re-reads the snapshot backend. Zero or less keeps the default.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRegistryClock(clock func() time.Time) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

type cachedStore struct {
	installationID string
	store          *Store
	lastUsed       time.Time
}

// Registry hands out one Store per installation and loads each at most once
// concurrently. Cached stores are bounded by capacity and idle time; a dropped
// store is reloaded from the snapshot backend on its next Get.
type Registry struct {
	snapshots ports.SnapshotStore
	opts      []StoreOption
	capacity  int
	idleTTL   time.Duration
	logger    *slog.Logger
	clock     func() time.Time

	mu     sync.Mutex
	stores map[string]*list.Element
	recent *list.List
	loads  singleflight.Group
}

// NewRegistry builds a registry whose stores share the snapshot backend.
func NewRegistry(snapshots ports.SnapshotStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		snapshots: snapshots,
		capacity:  DefaultRegistryCapacity,
		idleTTL:   DefaultIdleTTL,
		logger:    slog.New(slog.DiscardHandler),
		clock:     time.Now,
		stores:    map[string]*list.Element{},
		recent:    list.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Get returns the installation's store, loading it from the snapshot store on first use.
// Failed loads are not cached.
func (r *Registry) Get(ctx context.Context, installationID string) (*Store, error) {
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return nil, ErrMissingInstallation
	}
	if store, ok := r.lookup(installationID); ok {
		return store, nil
	}
	value, err, _ := r.loads.Do(installationID, func() (any, error) {
		if store, ok := r.lookup(installationID); ok {
			return store, nil
		}
		store, err := Open(ctx, installationID, r.snapshots, r.opts...)
		if err != nil {
			return nil, err
		}
		r.insert(installationID, store)
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Store), nil
}

// Evict drops the cached store so the next Get reloads from the snapshot store.
func (r *Registry) Evict(installationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.stores[strings.TrimSpace(installationID)]; ok {
		r.removeLocked(el)
	}
}

// EvictIdle drops every store unused for longer than the idle TTL and reports
// how many were dropped.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.clock().Add(-r.idleTTL)
	evicted := 0
	for el := r.recent.Back(); el != nil; {
		entry := el.Value.(*cachedStore)
		if entry.lastUsed.After(cutoff) {
			break
		}
		prev := el.Prev()
		r.removeLocked(el)
		evicted++
		el = prev
	}
	return evicted
}

// RunJanitor calls EvictIdle every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = r.idleTTL
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := r.EvictIdle(); evicted > 0 {
				r.logger.LogAttrs(ctx, slog.LevelDebug, "idle carts evicted",
					slog.Int("evicted", evicted), slog.Int("cached", r.Len()))
			}
		}
	}
}

// Len reports the number of loaded stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recent.Len()
}

// lookup returns a cached store and marks it used. A store past its idle TTL
// is dropped here so it is reloaded.
func (r *Registry) lookup(installationID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.stores[installationID]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cachedStore)
	now := r.clock()
	if now.Sub(entry.lastUsed) > r.idleTTL {
		r.removeLocked(el)
		return nil, false
	}
	entry.lastUsed = now
	r.recent.MoveToFront(el)
	return entry.store, true
}

func (r *Registry) insert(installationID string, store *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.stores[installationID]; ok {
		r.removeLocked(el)
	}
	r.stores[installationID] = r.recent.PushFront(&cachedStore{
		installationID: installationID,
		store:          store,
		lastUsed:       r.clock(),
	})
	for r.recent.Len() > r.capacity {
		r.removeLocked(r.recent.Back())
	}
}

func (r *Registry) removeLocked(el *list.Element) {
	entry := r.recent.Remove(el).(*cachedStore)
	delete(r.stores, entry.installationID)
}

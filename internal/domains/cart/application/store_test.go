package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	sets    int
	deleted []string
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{data: map[string]string{}}
}

func (f *fakeSnapshots) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.data[key]
	if !ok {
		return "", ports.ErrSnapshotNotFound
	}
	return value, nil
}

func (f *fakeSnapshots) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeSnapshots) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.data, key)
	return nil
}

func (f *fakeSnapshots) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []ports.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, _ string, n ports.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Title)
	}
	return out
}

func product(id, name, price string) *catalogdomain.Product {
	return &catalogdomain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Dairy",
		Stock:    10,
	}
}

func TestOpen_RequiresInstallation(t *testing.T) {
	_, err := Open(context.Background(), "  ", newFakeSnapshots())
	require.ErrorIs(t, err, ErrMissingInstallation)
}

func TestStore_AddMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	store, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)

	milk := product("1", "Milk", "3.49")
	require.NoError(t, store.AddToCart(ctx, milk, 2))
	require.NoError(t, store.AddToCart(ctx, milk, 3))

	lines := store.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
	require.Contains(t, snapshots.data, CartKey("inst-1"))

	reopened, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)
	require.Equal(t, 5, reopened.Count())
	require.True(t, reopened.Subtotal().Equal(decimal.RequireFromString("17.45")))
}

func TestStore_AddClampsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "inst-1", newFakeSnapshots())
	require.NoError(t, err)

	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 0))
	require.Equal(t, 1, store.Count())
	require.ErrorIs(t, store.AddToCart(ctx, nil, 1), domain.ErrNilProduct)
}

func TestStore_UpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	store, err := Open(ctx, "inst-1", newFakeSnapshots(), WithNotifier(notifier))
	require.NoError(t, err)

	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 2))
	store.UpdateQuantity(ctx, "1", 4)
	require.Equal(t, 4, store.Count())

	store.UpdateQuantity(ctx, "1", 0)
	require.Empty(t, store.Lines())
	require.Equal(t, []string{"Added to cart", "Removed from cart"}, notifier.titles())
}

func TestStore_NoOpMutationsNeitherPersistNorNotify(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	notifier := &recordingNotifier{}
	store, err := Open(ctx, "inst-1", snapshots, WithNotifier(notifier))
	require.NoError(t, err)

	store.RemoveFromCart(ctx, "missing")
	store.UpdateQuantity(ctx, "missing", 3)
	require.False(t, store.RemoveFromWishlist(ctx, "missing"))

	require.Zero(t, snapshots.setCount())
	require.Empty(t, notifier.titles())
}

func TestStore_CorruptSnapshotYieldsEmptyState(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	snapshots.data[CartKey("inst-1")] = "{not json"
	snapshots.data[WishlistKey("inst-1")] = `[{"id":"","name":"broken"}]`

	store, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)
	require.Empty(t, store.Lines())
	require.Empty(t, store.View().Wishlist)
	require.ElementsMatch(t, []string{CartKey("inst-1"), WishlistKey("inst-1")}, snapshots.deleted)
}

func TestStore_BackendReadErrorIsReturned(t *testing.T) {
	snapshots := newFakeSnapshots()
	boom := errors.New("connection refused")
	snapshots.getErr = boom

	_, err := Open(context.Background(), "inst-1", snapshots)
	require.ErrorIs(t, err, boom)
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	snapshots.setErr = errors.New("disk full")
	store, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)

	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 1))
	require.Equal(t, 1, store.Count())
	require.Equal(t, 2, snapshots.setCount())
}

func TestStore_PersistsAfterCancelledContext(t *testing.T) {
	snapshots := newFakeSnapshots()
	store, err := Open(context.Background(), "inst-1", snapshots)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 1))
	require.Contains(t, snapshots.data, CartKey("inst-1"))
}

func TestStore_ClearCart(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	store, err := Open(ctx, "inst-1", newFakeSnapshots(), WithNotifier(notifier))
	require.NoError(t, err)

	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 1))
	require.NoError(t, store.AddToCart(ctx, product("2", "Bread", "2.99"), 1))
	store.ClearCart(ctx)

	require.Zero(t, store.Count())
	require.True(t, store.Subtotal().IsZero())
	require.Equal(t, "Cart cleared", notifier.titles()[2])
}

func TestStore_WishlistAddIsIdempotentToggleFlips(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	store, err := Open(ctx, "inst-1", newFakeSnapshots(), WithNotifier(notifier))
	require.NoError(t, err)
	salmon := product("6", "Salmon", "12.99")

	added, err := store.AddToWishlist(ctx, salmon)
	require.NoError(t, err)
	require.True(t, added)
	added, err = store.AddToWishlist(ctx, salmon)
	require.NoError(t, err)
	require.False(t, added)
	require.True(t, store.IsInWishlist("6"))

	present, err := store.ToggleWishlist(ctx, salmon)
	require.NoError(t, err)
	require.False(t, present)
	present, err = store.ToggleWishlist(ctx, salmon)
	require.NoError(t, err)
	require.True(t, present)

	require.Equal(t, []string{"Added to wishlist", "Removed from wishlist", "Added to wishlist"}, notifier.titles())
}

func TestStore_WishlistRepeatedCallsPersist(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	store, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)
	milk := product("1", "Milk", "3.49")

	for i := 0; i < 2; i++ {
		_, err := store.AddToWishlist(ctx, milk)
		require.NoError(t, err)
	}
	reopened, err := Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)
	require.Len(t, reopened.View().Wishlist, 1)

	bread := product("2", "Bread", "6.00")
	for i := 0; i < 2; i++ {
		_, err := store.ToggleWishlist(ctx, bread)
		require.NoError(t, err)
	}
	require.True(t, store.RemoveFromWishlist(ctx, "1"))
	require.Empty(t, store.View().Wishlist)

	reopened, err = Open(ctx, "inst-1", snapshots)
	require.NoError(t, err)
	require.Empty(t, reopened.View().Wishlist)
}

func TestStore_ViewIsConsistent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "inst-1", newFakeSnapshots())
	require.NoError(t, err)

	require.NoError(t, store.AddToCart(ctx, product("1", "Milk", "3.49"), 2))
	require.NoError(t, store.AddToCart(ctx, product("2", "Bread", "6.00"), 1))

	view := store.View()
	require.Equal(t, "inst-1", view.InstallationID)
	require.Equal(t, 3, view.Count)
	require.True(t, view.Subtotal.Equal(decimal.RequireFromString("12.98")))
	require.Equal(t, "1", view.Lines[0].Product.ID)
	require.Equal(t, "2", view.Lines[1].Product.ID)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "inst-1", newFakeSnapshots())
	require.NoError(t, err)
	milk := product("1", "Milk", "3.49")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AddToCart(ctx, milk, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, store.Count())
}

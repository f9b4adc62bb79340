package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

// ErrMissingInstallation is returned when a store is opened without an installation id.
var ErrMissingInstallation = errors.New("installation id is required")

// View is a consistent read of the cart and wishlist.
type View struct {
	InstallationID string
	Lines          []domain.Line
	Wishlist       []catalogdomain.Product
	Subtotal       decimal.Decimal
	Count          int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n ports.Notifier) StoreOption {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Store is the authoritative cart and wishlist of one client installation.
// Mutations are serialised and every change is written through to the snapshot
// store. Write failures are logged, never returned.
type Store struct {
	mu             sync.Mutex
	installationID string
	cart           *domain.Cart
	wishlist       *domain.Wishlist
	snapshots      ports.SnapshotStore
	notifier       ports.Notifier
	logger         *slog.Logger
}

// Open loads the persisted state for an installation. A corrupt slot is
// discarded and replaced with empty state. Backend read failures are returned.
func Open(ctx context.Context, installationID string, snapshots ports.SnapshotStore, opts ...StoreOption) (*Store, error) {
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return nil, ErrMissingInstallation
	}
	if snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	s := &Store{
		installationID: installationID,
		cart:           domain.NewCart(),
		wishlist:       domain.NewWishlist(),
		snapshots:      snapshots,
		notifier:       ports.NoopNotifier{},
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	cartKey := CartKey(s.installationID)
	raw, ok, err := s.read(ctx, cartKey)
	if err != nil {
		return err
	}
	if ok {
		lines, err := decodeCart(raw)
		if err != nil {
			s.discard(ctx, cartKey, err)
		} else {
			s.cart = domain.NewCart(lines...)
		}
	}

	wishlistKey := WishlistKey(s.installationID)
	raw, ok, err = s.read(ctx, wishlistKey)
	if err != nil {
		return err
	}
	if ok {
		products, err := decodeWishlist(raw)
		if err != nil {
			s.discard(ctx, wishlistKey, err)
		} else {
			s.wishlist = domain.NewWishlist(products...)
		}
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.snapshots.Get(ctx, key)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", false, nil
	}
	return raw, true, nil
}

func (s *Store) discard(ctx context.Context, key string, cause error) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt snapshot",
		slog.String("installation.id", s.installationID),
		slog.String("snapshot.key", key),
		slog.String("error", cause.Error()))
	if err := s.snapshots.Delete(ctx, key); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to delete corrupt snapshot",
			slog.String("snapshot.key", key), slog.String("error", err.Error()))
	}
}

// InstallationID returns the installation this store belongs to.
func (s *Store) InstallationID() string {
	return s.installationID
}

// AddToCart increments the line for product or appends one. Quantities below one count as one.
func (s *Store) AddToCart(ctx context.Context, product *catalogdomain.Product, quantity int) error {
	if product == nil {
		return domain.ErrNilProduct
	}
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Add(product, quantity); err != nil {
		return err
	}
	s.persistLocked(ctx)
	s.notify(ctx, "Added to cart", fmt.Sprintf("%d x %s added to your cart", quantity, product.Name))
	return nil
}

// RemoveFromCart deletes the line. Removing an absent product is a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID string) {
	if !s.cart.Remove(productID) {
		return
	}
	s.persistLocked(ctx)
	s.notify(ctx, "Removed from cart", "Item removed from your cart")
}

// UpdateQuantity overwrites a line's quantity. Zero or less behaves like RemoveFromCart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}
	if s.cart.UpdateQuantity(productID, quantity) {
		s.persistLocked(ctx)
	}
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.persistLocked(ctx)
	s.notify(ctx, "Cart cleared", "All items have been removed from your cart")
}

// AddToWishlist inserts the product if absent and reports whether it was inserted.
// It is an idempotent add: a second call leaves the product in place. The
// legacy add-or-remove behaviour of the storefront button is ToggleWishlist.
func (s *Store) AddToWishlist(ctx context.Context, product *catalogdomain.Product) (bool, error) {
	if product == nil {
		return false, domain.ErrNilProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wishlist.Add(product) {
		return false, nil
	}
	s.persistLocked(ctx)
	s.notify(ctx, "Added to wishlist", fmt.Sprintf("%s added to your wishlist", product.Name))
	return true, nil
}

// ToggleWishlist removes the product when present, otherwise adds it.
// It reports whether the product is in the wishlist afterwards.
func (s *Store) ToggleWishlist(ctx context.Context, product *catalogdomain.Product) (bool, error) {
	if product == nil {
		return false, domain.ErrNilProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.wishlist.Toggle(product)
	s.persistLocked(ctx)
	if added {
		s.notify(ctx, "Added to wishlist", fmt.Sprintf("%s added to your wishlist", product.Name))
	} else {
		s.notify(ctx, "Removed from wishlist", "Item removed from your wishlist")
	}
	return added, nil
}

// RemoveFromWishlist deletes the product if present.
func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wishlist.Remove(productID) {
		return false
	}
	s.persistLocked(ctx)
	s.notify(ctx, "Removed from wishlist", "Item removed from your wishlist")
	return true
}

// IsInWishlist reports membership.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.Contains(productID)
}

// Lines returns the current cart lines.
func (s *Store) Lines() []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Subtotal sums price times quantity.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

// Count sums quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}

// View returns the cart and wishlist read under a single lock.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		InstallationID: s.installationID,
		Lines:          s.cart.Lines(),
		Wishlist:       s.wishlist.Items(),
		Subtotal:       s.cart.Subtotal(),
		Count:          s.cart.Count(),
	}
}

// persistLocked writes both slots, detached from request cancellation.
func (s *Store) persistLocked(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if raw, err := encodeCart(s.cart.Lines()); err != nil {
		s.warnPersist(ctx, CartKey(s.installationID), err)
	} else if err := s.snapshots.Set(ctx, CartKey(s.installationID), raw); err != nil {
		s.warnPersist(ctx, CartKey(s.installationID), err)
	}
	if raw, err := encodeWishlist(s.wishlist.Items()); err != nil {
		s.warnPersist(ctx, WishlistKey(s.installationID), err)
	} else if err := s.snapshots.Set(ctx, WishlistKey(s.installationID), raw); err != nil {
		s.warnPersist(ctx, WishlistKey(s.installationID), err)
	}
}

func (s *Store) warnPersist(ctx context.Context, key string, err error) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to persist snapshot",
		slog.String("installation.id", s.installationID),
		slog.String("snapshot.key", key),
		slog.String("error", err.Error()))
}

func (s *Store) notify(ctx context.Context, title, description string) {
	s.notifier.Notify(ctx, s.installationID, ports.Notification{
		Title:       title,
		Description: description,
		Variant:     ports.VariantDefault,
	})
}

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Transactor = (*Repository)(nil)
)

// Repository provides an in-memory order store for development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) CreateOrder(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(order)
}

func (r *Repository) createLocked(order *domain.Order) error {
	if _, exists := r.orders[order.ID]; exists {
		return errors.New("order already exists")
	}
	header := order.Clone()
	header.Lines = nil
	r.orders[order.ID] = header
	return nil
}

func (r *Repository) CreateLines(_ context.Context, orderID string, lines []domain.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLinesLocked(orderID, lines)
}

func (r *Repository) createLinesLocked(orderID string, lines []domain.Line) error {
	order, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	for _, line := range lines {
		line.OrderID = orderID
		order.Lines = append(order.Lines, line)
	}
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) LatestForUser(ctx context.Context, userID string) (*domain.Order, error) {
	orders, err := r.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ports.ErrNotFound
	}
	return orders[0], nil
}

// ListForUser returns the user's orders, newest first.
func (r *Repository) ListForUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = r.now().UTC()
	return order.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// WithinTx stages writes and applies them only when fn succeeds.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	tx := &stagedTx{parent: r, orders: map[string]*domain.Order{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range tx.order {
		if _, exists := r.orders[id]; exists {
			return errors.New("order already exists")
		}
	}
	for _, id := range tx.order {
		r.orders[id] = tx.orders[id]
	}
	return nil
}

// stagedTx buffers creates. Reads fall through to the parent for rows it has not staged.
type stagedTx struct {
	parent *Repository
	orders map[string]*domain.Order
	order  []string
}

func (t *stagedTx) CreateOrder(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if _, exists := t.orders[order.ID]; exists {
		return errors.New("order already exists")
	}
	header := order.Clone()
	header.Lines = nil
	t.orders[order.ID] = header
	t.order = append(t.order, order.ID)
	return nil
}

func (t *stagedTx) CreateLines(ctx context.Context, orderID string, lines []domain.Line) error {
	order, ok := t.orders[orderID]
	if !ok {
		return t.parent.CreateLines(ctx, orderID, lines)
	}
	for _, line := range lines {
		line.OrderID = orderID
		order.Lines = append(order.Lines, line)
	}
	return nil
}

func (t *stagedTx) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if order, ok := t.orders[id]; ok {
		return order.Clone(), nil
	}
	return t.parent.GetByID(ctx, id)
}

func (t *stagedTx) LatestForUser(ctx context.Context, userID string) (*domain.Order, error) {
	return t.parent.LatestForUser(ctx, userID)
}

func (t *stagedTx) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return t.parent.ListForUser(ctx, userID)
}

func (t *stagedTx) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	return t.parent.UpdateStatus(ctx, id, status)
}

func (t *stagedTx) Delete(ctx context.Context, id string) error {
	if _, ok := t.orders[id]; ok {
		delete(t.orders, id)
		return nil
	}
	return t.parent.Delete(ctx, id)
}

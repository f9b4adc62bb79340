package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/freshcart-api/internal/domains/orders/domain"
	"github.com/Apurer/freshcart-api/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Transactor = (*Repository)(nil)
)

// Repository persists orders and order items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID              string          `gorm:"primaryKey;column:id;size:36"`
	UserID          string          `gorm:"column:user_id;size:36;index:idx_orders_user_created"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
	Shipping        decimal.Decimal `gorm:"column:shipping;type:numeric(12,2)"`
	Tax             decimal.Decimal `gorm:"column:tax;type:numeric(12,2)"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	Status          string          `gorm:"column:status;type:varchar(32);index"`
	ShippingAddress string          `gorm:"column:shipping_address"`
	PaymentMethod   string          `gorm:"column:payment_method;type:varchar(32)"`
	CreatedAt       time.Time       `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID           string          `gorm:"primaryKey;column:id;size:36"`
	OrderID      string          `gorm:"column:order_id;size:36;index"`
	Position     int             `gorm:"column:position"`
	ProductID    string          `gorm:"column:product_id"`
	ProductName  string          `gorm:"column:product_name"`
	ProductImage string          `gorm:"column:product_image"`
	Quantity     int             `gorm:"column:quantity"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (lineRecord) TableName() string { return "order_items" }

// CreateOrder inserts the order header.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	record := toRecord(order)
	return r.db.WithContext(ctx).Create(&record).Error
}

// CreateLines inserts all items of an order in one batch.
func (r *Repository) CreateLines(ctx context.Context, orderID string, lines []domain.Line) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	records := make([]lineRecord, 0, len(lines))
	for i, line := range lines {
		records = append(records, toLineRecord(orderID, i, line))
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// GetByID loads an order with its items.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.withLines(ctx, &record)
}

// LatestForUser returns the user's most recent order.
func (r *Repository) LatestForUser(ctx context.Context, userID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.withLines(ctx, &record)
}

// ListForUser returns the user's orders, newest first, with items.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ID)
	}
	var lines []lineRecord
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	byOrder := map[string][]lineRecord{}
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain(byOrder[records[i].ID]))
	}
	return orders, nil
}

// UpdateStatus sets the status and returns the updated order.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order and its items.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&lineRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&orderRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// WithinTx runs fn inside a database transaction.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Repository{db: tx})
	})
}

func (r *Repository) withLines(ctx context.Context, record *orderRecord) (*domain.Order, error) {
	var lines []lineRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", record.ID).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return record.toDomain(lines), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:              order.ID,
		UserID:          order.UserID,
		Subtotal:        order.Subtotal,
		Shipping:        order.Shipping,
		Tax:             order.Tax,
		Total:           order.Total,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toLineRecord(orderID string, position int, line domain.Line) lineRecord {
	return lineRecord{
		ID:           line.ID,
		OrderID:      orderID,
		Position:     position,
		ProductID:    line.ProductID,
		ProductName:  line.ProductName,
		ProductImage: line.ProductImage,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
	}
}

func (r orderRecord) toDomain(lines []lineRecord) *domain.Order {
	order := &domain.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		Subtotal:        r.Subtotal,
		Shipping:        r.Shipping,
		Tax:             r.Tax,
		Total:           r.Total,
		Status:          domain.Status(r.Status),
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Lines:           make([]domain.Line, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ID:           line.ID,
			OrderID:      line.OrderID,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
		})
	}
	return order
}

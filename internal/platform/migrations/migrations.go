package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. Adapters never automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&cartSnapshotRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&orderReceiptRecord{},
		&userRecord{},
		&profileRecord{},
		&sessionRecord{},
	)
}

// Cart snapshot schema mirrors the cart Postgres snapshot store.
type cartSnapshotRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (cartSnapshotRecord) TableName() string { return "cart_snapshots" }

// Order header schema mirrors the orders Postgres adapter.
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

type orderItemRecord struct {
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

func (orderItemRecord) TableName() string { return "order_items" }

type orderReceiptRecord struct {
	UserID      string    `gorm:"primaryKey;column:user_id;size:36"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;size:128"`
	OrderID     string    `gorm:"column:order_id;size:36"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
}

func (orderReceiptRecord) TableName() string { return "order_submit_receipts" }

// User schema mirrors the accounts Postgres adapter.
type userRecord struct {
	ID           string         `gorm:"primaryKey;column:id;size:36"`
	Name         string         `gorm:"column:name"`
	Email        string         `gorm:"column:email;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash"`
	Roles        pq.StringArray `gorm:"column:roles;type:text[]"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Profile keeps the structured address plus the formatted line older rows relied on.
type profileRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:36"`
	FullName  string    `gorm:"column:full_name"`
	Phone     string    `gorm:"column:phone"`
	Street    string    `gorm:"column:street"`
	City      string    `gorm:"column:city"`
	State     string    `gorm:"column:state"`
	ZipCode   string    `gorm:"column:zip_code"`
	Address   string    `gorm:"column:address"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (profileRecord) TableName() string { return "profiles" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;index;size:36"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

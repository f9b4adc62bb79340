package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID      = errors.New("order id is required")
	ErrMissingUser    = errors.New("order user id is required")
	ErrNoLines        = errors.New("order requires at least one line")
	ErrInvalidLine    = errors.New("order line is invalid")
	ErrTotalMismatch  = errors.New("order total must equal subtotal plus shipping plus tax")
	ErrNegativeAmount = errors.New("order amounts must not be negative")
)

// Line snapshots a purchased product so history survives catalog changes.
type Line struct {
	ID           string
	OrderID      string
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" || strings.TrimSpace(l.ProductName) == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidLine)
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least one", ErrInvalidLine)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidLine)
	}
	return nil
}

// Order is a placed order. Amounts are frozen at submission.
type Order struct {
	ID              string
	UserID          string
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	ShippingAddress string
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []Line
}

// Validate enforces the order invariants, including the total identity.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(o.UserID) == "" {
		return ErrMissingUser
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	for _, amount := range []decimal.Decimal{o.Subtotal, o.Shipping, o.Tax, o.Total} {
		if amount.IsNegative() {
			return ErrNegativeAmount
		}
	}
	if !o.Subtotal.Add(o.Shipping).Add(o.Tax).Equal(o.Total) {
		return ErrTotalMismatch
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for i := range o.Lines {
		if err := o.Lines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves the order along the allowed transitions.
func (o *Order) UpdateStatus(next Status, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrStatusTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// ItemCount sums line quantities.
func (o *Order) ItemCount() int {
	count := 0
	for _, line := range o.Lines {
		count += line.Quantity
	}
	return count
}

// ShortID is the prefix used in customer communication.
func (o *Order) ShortID() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[:8]
}

// Clone returns a copy that shares no slices with o.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

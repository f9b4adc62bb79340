package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID     = errors.New("product id is required")
	ErrMissingName   = errors.New("product name is required")
	ErrNegativePrice = errors.New("product price must not be negative")
	ErrNegativeStock = errors.New("product stock must not be negative")
)

// NutritionInfo is the per-serving breakdown shown on the product page.
type NutritionInfo struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
}

// Product is a read-only catalog entry.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	Image         string
	Category      string
	Rating        float64
	Reviews       int
	Stock         int
	Badges        []string
	IsExpress     bool
	IsNewlyAdded  bool
	NutritionInfo *NutritionInfo
	Ingredients   []string
}

// Validate enforces catalog invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Clone returns a deep copy so callers can snapshot the product safely.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Badges = append([]string(nil), p.Badges...)
	clone.Ingredients = append([]string(nil), p.Ingredients...)
	if p.NutritionInfo != nil {
		info := *p.NutritionInfo
		clone.NutritionInfo = &info
	}
	return &clone
}

package application

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/cart/domain"
)

// Storage keys for the two persisted slots of an installation.
const (
	CartKeyPrefix     = "freshcart-cart"
	WishlistKeyPrefix = "freshcart-wishlist"
)

// CartKey returns the cart slot key for an installation.
func CartKey(installationID string) string {
	return CartKeyPrefix + ":" + installationID
}

// WishlistKey returns the wishlist slot key for an installation.
func WishlistKey(installationID string) string {
	return WishlistKeyPrefix + ":" + installationID
}

type lineSnapshot struct {
	Product  productSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

type productSnapshot struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Price         decimal.Decimal    `json:"price"`
	Image         string             `json:"image,omitempty"`
	Category      string             `json:"category,omitempty"`
	Rating        float64            `json:"rating,omitempty"`
	Reviews       int                `json:"reviews,omitempty"`
	Stock         int                `json:"stock"`
	Badges        []string           `json:"badges,omitempty"`
	IsExpress     bool               `json:"isExpress,omitempty"`
	IsNewlyAdded  bool               `json:"isNewlyAdded,omitempty"`
	NutritionInfo *nutritionSnapshot `json:"nutritionInfo,omitempty"`
	Ingredients   []string           `json:"ingredients,omitempty"`
}

type nutritionSnapshot struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

func encodeCart(lines []domain.Line) (string, error) {
	records := make([]lineSnapshot, 0, len(lines))
	for i := range lines {
		records = append(records, lineSnapshot{Product: fromProduct(&lines[i].Product), Quantity: lines[i].Quantity})
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeCart(raw string) ([]domain.Line, error) {
	var records []lineSnapshot
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	lines := make([]domain.Line, 0, len(records))
	for i := range records {
		product := records[i].Product.toDomain()
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("cart line %d: %w", i, err)
		}
		lines = append(lines, domain.Line{Product: *product, Quantity: records[i].Quantity})
	}
	return lines, nil
}

func encodeWishlist(products []catalogdomain.Product) (string, error) {
	records := make([]productSnapshot, 0, len(products))
	for i := range products {
		records = append(records, fromProduct(&products[i]))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeWishlist(raw string) ([]catalogdomain.Product, error) {
	var records []productSnapshot
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	products := make([]catalogdomain.Product, 0, len(records))
	for i := range records {
		product := records[i].toDomain()
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("wishlist entry %d: %w", i, err)
		}
		products = append(products, *product)
	}
	return products, nil
}

func fromProduct(p *catalogdomain.Product) productSnapshot {
	snapshot := productSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Image:        p.Image,
		Category:     p.Category,
		Rating:       p.Rating,
		Reviews:      p.Reviews,
		Stock:        p.Stock,
		Badges:       p.Badges,
		IsExpress:    p.IsExpress,
		IsNewlyAdded: p.IsNewlyAdded,
		Ingredients:  p.Ingredients,
	}
	if p.NutritionInfo != nil {
		snapshot.NutritionInfo = &nutritionSnapshot{
			Calories: p.NutritionInfo.Calories,
			Protein:  p.NutritionInfo.Protein,
			Carbs:    p.NutritionInfo.Carbs,
			Fat:      p.NutritionInfo.Fat,
			Fiber:    p.NutritionInfo.Fiber,
		}
	}
	return snapshot
}

func (s productSnapshot) toDomain() *catalogdomain.Product {
	product := &catalogdomain.Product{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.Price,
		Image:        s.Image,
		Category:     s.Category,
		Rating:       s.Rating,
		Reviews:      s.Reviews,
		Stock:        s.Stock,
		Badges:       s.Badges,
		IsExpress:    s.IsExpress,
		IsNewlyAdded: s.IsNewlyAdded,
		Ingredients:  s.Ingredients,
	}
	if s.NutritionInfo != nil {
		product.NutritionInfo = &catalogdomain.NutritionInfo{
			Calories: s.NutritionInfo.Calories,
			Protein:  s.NutritionInfo.Protein,
			Carbs:    s.NutritionInfo.Carbs,
			Fat:      s.NutritionInfo.Fat,
			Fiber:    s.NutritionInfo.Fiber,
		}
	}
	return product
}

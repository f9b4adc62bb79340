package mapper

import (
	"github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
)

// Nutrition is the per-serving breakdown in transport form.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Product is the catalog entry as served to clients. Price is a fixed two-place decimal string.
type Product struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         string     `json:"price"`
	Image         string     `json:"image"`
	Category      string     `json:"category"`
	Rating        float64    `json:"rating"`
	Reviews       int        `json:"reviews"`
	Stock         int        `json:"stock"`
	InStock       bool       `json:"inStock"`
	Badges        []string   `json:"badges,omitempty"`
	IsExpress     bool       `json:"isExpress"`
	IsNewlyAdded  bool       `json:"isNewlyAdded"`
	NutritionInfo *Nutrition `json:"nutritionInfo,omitempty"`
	Ingredients   []string   `json:"ingredients,omitempty"`
}

func FromDomainProduct(p *domain.Product) Product {
	if p == nil {
		return Product{}
	}
	out := Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Image:        p.Image,
		Category:     p.Category,
		Rating:       p.Rating,
		Reviews:      p.Reviews,
		Stock:        p.Stock,
		InStock:      p.InStock(),
		Badges:       append([]string(nil), p.Badges...),
		IsExpress:    p.IsExpress,
		IsNewlyAdded: p.IsNewlyAdded,
		Ingredients:  append([]string(nil), p.Ingredients...),
	}
	if n := p.NutritionInfo; n != nil {
		out.NutritionInfo = &Nutrition{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat, Fiber: n.Fiber}
	}
	return out
}

func FromDomainProducts(products []*domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromDomainProduct(p))
	}
	return out
}

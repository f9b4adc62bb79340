package memory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Apurer/freshcart-api/internal/domains/catalog/domain"
	"github.com/Apurer/freshcart-api/internal/domains/catalog/ports"
)

//go:embed products.json
var seedProducts []byte

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog preserving insertion order for display.
type Repository struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*domain.Product
}

// NewRepository builds a repository from the provided products.
func NewRepository(products ...*domain.Product) (*Repository, error) {
	repo := &Repository{products: map[string]*domain.Product{}}
	for _, product := range products {
		if err := repo.put(product); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// NewSeededRepository loads the bundled FreshCart catalog.
func NewSeededRepository() (*Repository, error) {
	var records []productRecord
	if err := json.Unmarshal(seedProducts, &records); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return NewRepository(products...)
}

func (r *Repository) put(product *domain.Product) error {
	if product == nil {
		return fmt.Errorf("product is nil")
	}
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product %q: %w", product.ID, err)
	}
	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = product.Clone()
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	list := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		product := r.products[id]
		if filter.Category != "" && !strings.EqualFold(product.Category, filter.Category) {
			continue
		}
		if filter.ExpressOnly && !product.IsExpress {
			continue
		}
		if query != "" && !matches(product, query) {
			continue
		}
		list = append(list, product.Clone())
	}
	return list, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	categories := make([]string, 0)
	for _, product := range r.products {
		if _, ok := seen[product.Category]; ok {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func matches(product *domain.Product, query string) bool {
	if strings.Contains(strings.ToLower(product.Name), query) {
		return true
	}
	return strings.Contains(strings.ToLower(product.Description), query)
}

type productRecord struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Stock         int              `json:"stock"`
	IsExpress     bool             `json:"isExpress"`
	IsNewlyAdded  bool             `json:"isNewlyAdded"`
	Badges        []string         `json:"badges"`
	NutritionInfo *nutritionRecord `json:"nutritionInfo"`
	Ingredients   []string         `json:"ingredients"`
}

type nutritionRecord struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

func (r productRecord) toDomain() *domain.Product {
	product := &domain.Product{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Image:        r.Image,
		Category:     r.Category,
		Rating:       r.Rating,
		Reviews:      r.Reviews,
		Stock:        r.Stock,
		Badges:       r.Badges,
		IsExpress:    r.IsExpress,
		IsNewlyAdded: r.IsNewlyAdded,
		Ingredients:  r.Ingredients,
	}
	if r.NutritionInfo != nil {
		product.NutritionInfo = &domain.NutritionInfo{
			Calories: r.NutritionInfo.Calories,
			Protein:  r.NutritionInfo.Protein,
			Carbs:    r.NutritionInfo.Carbs,
			Fat:      r.NutritionInfo.Fat,
			Fiber:    r.NutritionInfo.Fiber,
		}
	}
	return product
}

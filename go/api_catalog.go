package storefrontserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/freshcart-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/freshcart-api/internal/domains/catalog/ports"
)

// CatalogAPI serves the read-only product catalog.
type CatalogAPI struct {
	catalog catalogports.Service
}

func NewCatalogAPI(catalog catalogports.Service) CatalogAPI {
	return CatalogAPI{catalog: catalog}
}

// Get /v1/products
// Lists products, optionally filtered by category, search text and express delivery
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	filter := catalogports.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if raw := c.Query("express"); raw != "" {
		express, err := strconv.ParseBool(raw)
		if err != nil {
			responder.BadRequest(c, "express must be a boolean")
			return
		}
		filter.ExpressOnly = express
	}
	products, err := api.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProducts(products))
}

// Get /v1/products/:id
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	product, err := api.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Get /v1/categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories, err := api.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

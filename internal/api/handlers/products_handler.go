package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/catalog"
	"example.com/ventasapp/services/pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ProductsHandler handles product-related HTTP requests
type ProductsHandler struct {
	catalog *catalog.Service
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(cat *catalog.Service) *ProductsHandler {
	return &ProductsHandler{catalog: cat}
}

// RegisterRoutes registers the product routes
func (h *ProductsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/productos")
	group.GET("", h.List)
	group.GET("/disponibles", h.Available)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.PATCH("/:id/stock", h.PatchStock)
	group.DELETE("/:id", h.Delete)
}

// ProductRequest represents an incoming product payload
type ProductRequest struct {
	Name        string                    `json:"nombre"`
	Category    string                    `json:"categoria"`
	Price       float64                   `json:"precio"`
	Stock       float64                   `json:"stock"`
	StationID   *string                   `json:"puestoId"`
	Description string                    `json:"descripcion"`
	Icon        string                    `json:"icono"`
	ImageURL    string                    `json:"imagenUrl"`
	IsCombo     bool                      `json:"esCombo"`
	Components  models.ComboComponentList `json:"productosCombo"`
	ComboPrice  *float64                  `json:"precioCombo"`
	BaseUnit    string                    `json:"unidadBase"`
	SaleUnits   []models.SaleUnit         `json:"unidadesVenta"`
}

// ProductUpdateRequest represents a partial product edit
type ProductUpdateRequest struct {
	Name        *string                   `json:"nombre"`
	Category    *string                   `json:"categoria"`
	Price       *float64                  `json:"precio"`
	Stock       *float64                  `json:"stock"`
	StationID   *string                   `json:"puestoId"`
	Description *string                   `json:"descripcion"`
	Icon        *string                   `json:"icono"`
	ImageURL    *string                   `json:"imagenUrl"`
	Components  models.ComboComponentList `json:"productosCombo"`
	ComboPrice  *float64                  `json:"precioCombo"`
	BaseUnit    *string                   `json:"unidadBase"`
	SaleUnits   []models.SaleUnit         `json:"unidadesVenta"`
}

// StockPatchRequest represents a manual stock adjustment
type StockPatchRequest struct {
	Delta *float64 `json:"delta"`
	Stock *float64 `json:"stock"`
}

// List returns the full catalog
func (h *ProductsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Products())
}

// Available returns what can be sold right now
func (h *ProductsHandler) Available(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.AvailableProducts())
}

// Get returns one product
func (h *ProductsHandler) Get(c *gin.Context) {
	product, err := h.catalog.Product(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create adds a product to the catalog
func (h *ProductsHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c, models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		StationID:   req.StationID,
		Description: req.Description,
		Icon:        req.Icon,
		ImageURL:    req.ImageURL,
		IsCombo:     req.IsCombo,
		Components:  req.Components,
		ComboPrice:  req.ComboPrice,
		BaseUnit:    req.BaseUnit,
		SaleUnits:   req.SaleUnits,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update applies a partial product edit
func (h *ProductsHandler) Update(c *gin.Context) {
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.UpdateProduct(c, c.Param("id"), catalog.ProductUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		StationID:   req.StationID,
		Description: req.Description,
		Icon:        req.Icon,
		ImageURL:    req.ImageURL,
		Components:  req.Components,
		ComboPrice:  req.ComboPrice,
		BaseUnit:    req.BaseUnit,
		SaleUnits:   req.SaleUnits,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// PatchStock adjusts stock by a signed delta, or sets it absolutely
func (h *ProductsHandler) PatchStock(c *gin.Context) {
	var req StockPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Delta == nil && req.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta or stock is required"})
		return
	}

	var (
		product models.Product
		err     error
	)
	if req.Delta != nil {
		product, err = h.catalog.AdjustStock(c, c.Param("id"), *req.Delta)
	} else {
		product, err = h.catalog.UpdateProduct(c, c.Param("id"), catalog.ProductUpdate{Stock: req.Stock})
	}
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete removes a product
func (h *ProductsHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

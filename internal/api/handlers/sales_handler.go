package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SalesHandler handles sale-related HTTP requests
type SalesHandler struct {
	ledger *ledger.Service
	search *search.ElasticClient
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(l *ledger.Service, es *search.ElasticClient) *SalesHandler {
	return &SalesHandler{ledger: l, search: es}
}

// RegisterRoutes registers the sale routes
func (h *SalesHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/ventas")
	group.GET("", h.List)
	group.POST("", h.Record)
	group.GET("/buscar", h.Search)
}

// SaleRequest cuts a sale from a finished order
type SaleRequest struct {
	OrderID    string `json:"pedidoId" binding:"required"`
	ReceiptURL string `json:"comprobanteUrl"`
}

// List returns sales, filtered by ?hoy=true or ?metodo=
func (h *SalesHandler) List(c *gin.Context) {
	if c.Query("hoy") == "true" {
		c.JSON(http.StatusOK, h.ledger.TodaySales())
		return
	}
	if raw := c.Query("metodo"); raw != "" {
		method, err := models.ParsePaymentMethod(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, h.ledger.SalesByPayment(method))
		return
	}
	c.JSON(http.StatusOK, h.ledger.Sales())
}

// Record registers the sale for an order and marks it delivered. Repeating
// the call for the same order returns the original sale.
func (h *SalesHandler) Record(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.ledger.RecordSale(c, req.OrderID, req.ReceiptURL, false)
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// Search queries indexed sales by customer or item name
func (h *SalesHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	if !h.search.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	docs, err := h.search.SearchSales(c, term)
	if err != nil {
		log.Error().Err(err).Msg("Sale search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, docs)
}

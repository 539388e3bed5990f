package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/catalog"
	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles the system reset endpoints
type AdminHandler struct {
	catalog *catalog.Service
	orders  *order.Engine
	ledger  *ledger.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cat *catalog.Service, orders *order.Engine, l *ledger.Service) *AdminHandler {
	return &AdminHandler{catalog: cat, orders: orders, ledger: l}
}

// RegisterRoutes registers the admin routes
func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/sistema")
	group.POST("/reiniciar", h.ResetOperations)
	group.POST("/reiniciar-todo", h.ResetAll)
}

// ResetOperations clears orders and sales, keeping the catalog
func (h *AdminHandler) ResetOperations(c *gin.Context) {
	log.Warn().Msg("Resetting orders and sales")
	h.orders.Clear(c)
	h.ledger.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ResetAll wipes the whole system, catalog included
func (h *AdminHandler) ResetAll(c *gin.Context) {
	log.Warn().Msg("Resetting the whole system")
	h.orders.Clear(c)
	h.ledger.Clear(c)
	h.catalog.ClearCatalog(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

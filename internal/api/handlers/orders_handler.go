package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// OrdersHandler handles order-related HTTP requests
type OrdersHandler struct {
	orders *order.Engine
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(orders *order.Engine) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// RegisterRoutes registers the order routes
func (h *OrdersHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/pedidos")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id/puestos/:puestoId/estado", h.AdvanceStation)
	group.PUT("/:id/entregar", h.Deliver)
	group.DELETE("/:id", h.Delete)
	router.GET("/api/puestos/:id/pedidos", h.ForStation)
}

// StateRequest carries the target state for a station transition
type StateRequest struct {
	State string `json:"estado" binding:"required"`
}

// List returns orders, optionally filtered by overall state
func (h *OrdersHandler) List(c *gin.Context) {
	if raw := c.Query("estado"); raw != "" {
		state, err := models.ParseOrderState(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, h.orders.OrdersByState(state))
		return
	}
	c.JSON(http.StatusOK, h.orders.Orders())
}

// Get returns one order
func (h *OrdersHandler) Get(c *gin.Context) {
	o, err := h.orders.Order(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// AdvanceStation moves one station's share of an order forward
func (h *OrdersHandler) AdvanceStation(c *gin.Context) {
	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, err := models.ParseOrderState(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.AdvanceStation(c, c.Param("id"), c.Param("puestoId"), next, false)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, o)
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, order.ErrStationNotInOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// Deliver closes an order unconditionally
func (h *OrdersHandler) Deliver(c *gin.Context) {
	o, err := h.orders.MarkDelivered(c, c.Param("id"), false)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// Delete removes an order; its sequence number is never reissued
func (h *OrdersHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ForStation lists a station's queue, oldest first
func (h *OrdersHandler) ForStation(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.OrdersForStation(c.Param("id")))
}

package handlers

import (
	"net/http"
	"strings"

	"example.com/ventasapp/services/pos/internal/cart"
	"example.com/ventasapp/services/pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CartsHandler handles cart-related HTTP requests
type CartsHandler struct {
	carts *cart.Engine
}

// NewCartsHandler creates a new carts handler
func NewCartsHandler(carts *cart.Engine) *CartsHandler {
	return &CartsHandler{carts: carts}
}

// RegisterRoutes registers the cart routes
func (h *CartsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/carritos")
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.POST("/:id/items", h.AddItem)
	group.PUT("/:id/items", h.SetQuantity)
	group.DELETE("/:id/items", h.RemoveItem)
	group.POST("/:id/confirmar", h.Checkout)
	group.DELETE("/:id", h.Cancel)
}

// CartItemRequest identifies a product (and optionally a sale unit) in a cart
type CartItemRequest struct {
	ProductID  string  `json:"productoId" binding:"required"`
	SaleUnitID string  `json:"unidadVentaId"`
	Quantity   float64 `json:"cantidad"`
}

// CheckoutRequest finalizes a cart into an order
type CheckoutRequest struct {
	Customer      string `json:"cliente"`
	PaymentMethod string `json:"metodoPago" binding:"required"`
	ReceiptURL    string `json:"comprobanteUrl"`
}

// Create opens an empty cart
func (h *CartsHandler) Create(c *gin.Context) {
	c.JSON(http.StatusCreated, h.carts.Create())
}

// Get returns a cart snapshot
func (h *CartsHandler) Get(c *gin.Context) {
	snapshot, err := h.carts.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// AddItem puts one unit of a product in the cart
func (h *CartsHandler) AddItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.carts.AddItem(c, c.Param("id"), req.ProductID, req.SaleUnitID)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SetQuantity adjusts a line to an exact quantity
func (h *CartsHandler) SetQuantity(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.carts.SetQuantity(c, c.Param("id"), req.ProductID, req.SaleUnitID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// RemoveItem drops a line, returning its reserved stock
func (h *CartsHandler) RemoveItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.carts.RemoveLine(c, c.Param("id"), req.ProductID, req.SaleUnitID)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Checkout finalizes a cart into an order
func (h *CartsHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Customer) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cliente is required"})
		return
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.carts.Checkout(c, c.Param("id"), req.Customer, method, req.ReceiptURL)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Cancel abandons a cart, rolling back its reservations
func (h *CartsHandler) Cancel(c *gin.Context) {
	if err := h.carts.Cancel(c, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartsHandler) renderCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrUnitRequired), errors.Is(err, cart.ErrUnitNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

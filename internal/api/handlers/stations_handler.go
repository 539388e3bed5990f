package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/catalog"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// StationsHandler handles station-related HTTP requests
type StationsHandler struct {
	catalog *catalog.Service
}

// NewStationsHandler creates a new stations handler
func NewStationsHandler(cat *catalog.Service) *StationsHandler {
	return &StationsHandler{catalog: cat}
}

// RegisterRoutes registers the station routes
func (h *StationsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/puestos")
	group.GET("", h.List)
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.GET("/:id/productos", h.Products)
}

// StationRequest represents an incoming station payload
type StationRequest struct {
	Name   string `json:"nombre"`
	Avatar string `json:"avatar"`
}

// List returns every station
func (h *StationsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Stations())
}

// Create registers a new station
func (h *StationsHandler) Create(c *gin.Context) {
	var req StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	station, err := h.catalog.CreateStation(c, req.Name, req.Avatar)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, station)
}

// Update applies a partial station edit
func (h *StationsHandler) Update(c *gin.Context) {
	var req struct {
		Name   *string `json:"nombre"`
		Avatar *string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	station, err := h.catalog.UpdateStation(c, c.Param("id"), catalog.StationUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrStationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, station)
}

// Delete removes a station; refused while products still reference it
func (h *StationsHandler) Delete(c *gin.Context) {
	err := h.catalog.DeleteStation(c, c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, catalog.ErrStationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrStationHasProducts):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Products lists the products assigned to a station
func (h *StationsHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.ProductsByStation(c.Param("id")))
}

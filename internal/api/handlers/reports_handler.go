package handlers

import (
	"net/http"

	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/report"

	"github.com/gin-gonic/gin"
)

// ReportsHandler handles report-related HTTP requests
type ReportsHandler struct {
	ledger *ledger.Service
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(l *ledger.Service) *ReportsHandler {
	return &ReportsHandler{ledger: l}
}

// RegisterRoutes registers the report routes
func (h *ReportsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/reportes/hoy", h.Today)
}

// Today summarizes the current sale day
func (h *ReportsHandler) Today(c *gin.Context) {
	c.JSON(http.StatusOK, report.BuildToday(h.ledger))
}

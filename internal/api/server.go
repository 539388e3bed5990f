package api

import (
	"context"
	"net/http"
	"time"

	"example.com/ventasapp/services/pos/config"
	"example.com/ventasapp/services/pos/internal/api/handlers"
	"example.com/ventasapp/services/pos/internal/cart"
	"example.com/ventasapp/services/pos/internal/catalog"
	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	catalog    *catalog.Service
	carts      *cart.Engine
	orders     *order.Engine
	ledger     *ledger.Service
	search     *search.ElasticClient
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, cat *catalog.Service, carts *cart.Engine, orders *order.Engine, sales *ledger.Service, es *search.ElasticClient) *Server {
	server := &Server{
		config:  cfg,
		catalog: cat,
		carts:   carts,
		orders:  orders,
		ledger:  sales,
		search:  es,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Recovery middleware
	router.Use(gin.Recovery())

	// Register handlers
	handlers.NewStationsHandler(s.catalog).RegisterRoutes(router)
	handlers.NewProductsHandler(s.catalog).RegisterRoutes(router)
	handlers.NewCartsHandler(s.carts).RegisterRoutes(router)
	handlers.NewOrdersHandler(s.orders).RegisterRoutes(router)
	handlers.NewSalesHandler(s.ledger, s.search).RegisterRoutes(router)
	handlers.NewReportsHandler(s.ledger).RegisterRoutes(router)
	handlers.NewAdminHandler(s.catalog, s.orders, s.ledger).RegisterRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}

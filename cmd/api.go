package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"example.com/ventasapp/services/pos/config"
	"example.com/ventasapp/services/pos/internal/api"
	"example.com/ventasapp/services/pos/internal/cart"
	"example.com/ventasapp/services/pos/internal/catalog"
	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/models"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/search"
	"example.com/ventasapp/services/pos/internal/store"
	"example.com/ventasapp/services/pos/internal/syncbus"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for stations, products, carts, orders and sales`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize persistence
	repo, err := initRepository(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize database, continuing without persistence")
		repo = nil
	}

	// Seed the in-memory state from persisted records
	st := store.New()
	if repo != nil {
		if err := seedStore(ctx, st, repo); err != nil {
			return err
		}
	}

	// Initialize the cross-view sync bus
	bus, err := syncbus.New(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize sync bus, continuing without cross-view sync")
		bus = nil
	}

	// Initialize Elasticsearch client
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	}

	// Initialize services
	catalogService := catalog.New(st, repo, bus)
	orderEngine := order.New(st, repo, bus)
	cartEngine := cart.New(st, repo, bus)
	ledgerService := ledger.New(st, repo, bus, orderEngine, elasticClient)

	// Apply sync events published by other views
	unsubscribe, err := bus.Subscribe(ctx, func(ev syncbus.Event) {
		applySyncEvent(ctx, ev, catalogService, orderEngine, ledgerService)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to subscribe to sync events, continuing without cross-view sync")
	} else {
		defer unsubscribe()
	}

	// Initialize and start the server
	server := api.NewServer(cfg, catalogService, cartEngine, orderEngine, ledgerService, elasticClient)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	bus.Close()

	log.Info().Msg("Shutting down API server")
	return nil
}

func initRepository(cfg config.Config) (repository.Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Configure the connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying DB connection")
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	return repository.New(db)
}

func seedStore(ctx context.Context, st *store.Store, repo repository.Repository) error {
	stations, err := repo.LoadStations(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load stations")
	}
	products, err := repo.LoadProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load products")
	}
	orders, err := repo.LoadOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load orders")
	}
	sales, err := repo.LoadSales(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load sales")
	}

	st.Seed(stations, products, orders, sales)
	log.Info().
		Int("stations", len(stations)).
		Int("products", len(products)).
		Int("orders", len(orders)).
		Int("sales", len(sales)).
		Msg("Seeded state from database")
	return nil
}

// applySyncEvent folds an event from another view into local state. The
// appliers persist but never re-publish, so events cannot echo between views.
func applySyncEvent(ctx context.Context, ev syncbus.Event, cat *catalog.Service, orders *order.Engine, sales *ledger.Service) {
	switch ev.Type {
	case syncbus.EventStationsReplaced:
		var stations []models.Station
		if decodeSyncPayload(ev, &stations) {
			cat.ApplyRemoteStations(ctx, stations)
		}
	case syncbus.EventProductsReplaced:
		var products []models.Product
		if decodeSyncPayload(ev, &products) {
			cat.ApplyRemoteProducts(ctx, products)
		}
	case syncbus.EventOrdersReplaced:
		var orderList []models.Order
		if decodeSyncPayload(ev, &orderList) {
			orders.ApplyRemoteOrders(ctx, orderList)
		}
	case syncbus.EventOrderCreated, syncbus.EventOrderUpdated:
		var o models.Order
		if decodeSyncPayload(ev, &o) {
			orders.ApplyRemoteOrder(ctx, o)
		}
	case syncbus.EventSalesReplaced:
		var saleList []models.Sale
		if decodeSyncPayload(ev, &saleList) {
			sales.ApplyRemoteSales(ctx, saleList)
		}
	case syncbus.EventSaleRecorded:
		var sale models.Sale
		if decodeSyncPayload(ev, &sale) {
			sales.ApplyRemoteSale(ctx, sale)
		}
	default:
		log.Debug().Str("event", ev.Type).Msg("Ignoring unknown sync event")
	}
}

func decodeSyncPayload(ev syncbus.Event, out interface{}) bool {
	if err := json.Unmarshal(ev.Data, out); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("Failed to decode sync event payload")
		return false
	}
	return true
}

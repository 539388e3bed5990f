package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"example.com/ventasapp/services/pos/config"
	"example.com/ventasapp/services/pos/internal/ledger"
	"example.com/ventasapp/services/pos/internal/order"
	"example.com/ventasapp/services/pos/internal/report"
	"example.com/ventasapp/services/pos/internal/repository"
	"example.com/ventasapp/services/pos/internal/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that builds the end-of-day sales report on a schedule`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}
	if !cfg.Report.Enabled {
		log.Info().Msg("Report worker is disabled in configuration")
		return nil
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize persistence; the worker is read-only so a database is required
	repo, err := initRepository(cfg)
	if err != nil {
		return err
	}

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Start the daily report cron job
	g.Go(func() error {
		log.Info().Str("cron", cfg.Report.Cron).Msg("Starting daily report job")

		// Create a scheduler
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.CronJob(cfg.Report.Cron, false),
			gocron.NewTask(func() {
				if err := buildDailyReport(ctx, repo); err != nil {
					log.Error().Err(err).Msg("Failed to build daily report")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Start the scheduler
		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		// Shutdown the scheduler
		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}

// buildDailyReport reloads the sales from the database and logs the day's
// summary. The worker never mutates state, so it reads fresh every run.
func buildDailyReport(ctx context.Context, repo repository.Repository) error {
	sales, err := repo.LoadSales(ctx)
	if err != nil {
		return err
	}

	st := store.New()
	st.Seed(nil, nil, nil, sales)
	ledgerService := ledger.New(st, nil, nil, order.New(st, nil, nil), nil)

	snap := report.BuildToday(ledgerService)
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	log.Info().
		Str("day", snap.Day).
		Int("sales", snap.SaleCount).
		Float64("total", snap.Total).
		RawJSON("report", payload).
		Msg("Daily report")
	return nil
}

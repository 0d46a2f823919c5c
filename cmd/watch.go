package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"sjsage522/cruisewatch/logger"
	"sjsage522/cruisewatch/services/api"
	"sjsage522/cruisewatch/services/worker"
)

var watchIDs []string

func init() {
	watchCmd.Flags().StringSliceVar(&watchIDs, "ids", nil, "Itinerary identifiers to load, overriding ITINERARY_IDS.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--ids a,b]",
	Short: "Reloads prices every CRAWL_INTERVAL_SECONDS and serves the latest report over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pricing, err := loadConfig(watchIDs)
		if err != nil {
			return err
		}

		log := logger.ForWorker()
		log.Info().
			Str("environment", cfg.Environment).
			Strs("itineraries", cfg.ItineraryIDs).
			Strs("cabin_types", pricing.Labels()).
			Dur("crawl_interval", cfg.CrawlInterval).
			Msg("Starting watch mode")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		services := initializeServices(ctx, cfg, pricing)
		defer services.Cleanup()

		w := worker.NewWorker(services.Aggregator, cfg.ItineraryIDs, pricing, cfg.BaseURL, services.Publisher, cfg.CrawlInterval)
		server := api.NewServer(cfg.ServerAddr, w, services.Checks, services.Metrics)

		serverDone := make(chan error, 1)
		go func() {
			serverDone <- server.Start()
		}()

		workerDone := make(chan error, 1)
		go func() {
			log.Info().Msg("Starting cruise price worker")
			workerDone <- w.Start(ctx)
		}()

		var runErr error
		select {
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
		case err := <-serverDone:
			if err != nil {
				log.Error().Err(err).Msg("Status server exited with error")
				runErr = err
			}
		case err := <-workerDone:
			if err != nil {
				log.Error().Err(err).Msg("Worker exited with error")
				runErr = err
			}
		}
		cancel()

		log.Info().Msg("Shutting down gracefully...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Status server shutdown failed")
		}

		return runErr
	},
}

package cmd

import (
	"context"

	"sjsage522/cruisewatch/config"
	"sjsage522/cruisewatch/helpers"
	"sjsage522/cruisewatch/internal/cruise"
	"sjsage522/cruisewatch/internal/monitoring"
	"sjsage522/cruisewatch/logger"
	"sjsage522/cruisewatch/services/api"
	"sjsage522/cruisewatch/services/cache"
	"sjsage522/cruisewatch/services/publisher"
)

// Services holds all the initialized services
type Services struct {
	Config     *config.Config
	Pricing    config.Pricing
	Metrics    *monitoring.Metrics
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Aggregator *cruise.Aggregator
	Checks     map[string]api.HealthCheck
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Failed to close publisher")
		}
	}
}

// loadConfig reads and validates the environment configuration. ids, when
// non-empty, replaces ITINERARY_IDS.
func loadConfig(ids []string) (*config.Config, config.Pricing, error) {
	cfg := config.LoadConfig()
	if len(ids) > 0 {
		cfg.ItineraryIDs = ids
	}
	if err := cfg.Validate(); err != nil {
		return nil, config.Pricing{}, err
	}

	pricing, err := config.LoadPricing(cfg.PricingFile)
	if err != nil {
		return nil, config.Pricing{}, err
	}
	return cfg, pricing, nil
}

// initializeServices wires the optional memcache guard and Redis publisher
// and builds the aggregator.
func initializeServices(ctx context.Context, cfg *config.Config, pricing config.Pricing) *Services {
	services := &Services{
		Config:  cfg,
		Pricing: pricing,
		Metrics: monitoring.NewMetrics(),
		Checks:  make(map[string]api.HealthCheck),
	}

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "cruisewatch")
		log := logger.ForCache()
		if err := mc.Ping(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache is not reachable yet")
		} else {
			log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
		services.Cache = mc
		services.Checks["memcache"] = func(ctx context.Context) error { return mc.Ping() }
	}

	if cfg.RedisAddr != "" {
		p := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
		log := logger.ForPublisher()
		if err := p.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis is not reachable yet")
		} else {
			log.Info().
				Str("addr", cfg.RedisAddr).
				Int("db", cfg.RedisDB).
				Str("stream", cfg.RedisStream).
				Msg("Connected to Redis")
		}
		services.Publisher = p
		services.Checks["redis"] = p.Ping
	}

	fetcher := cruise.NewHTTPFetcher(helpers.NewClient(cfg.HTTPTimeout), services.Cache, cfg.BlockTime, services.Metrics)
	services.Aggregator = cruise.NewAggregator(fetcher, cfg.BaseURL, services.Metrics)

	return services
}

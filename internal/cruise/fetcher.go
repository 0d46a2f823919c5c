package cruise

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sjsage522/cruisewatch/helpers"
	"sjsage522/cruisewatch/internal/monitoring"
	"sjsage522/cruisewatch/logger"
	apperrors "sjsage522/cruisewatch/pkg/errors"
	"sjsage522/cruisewatch/services/cache"
)

// Fetcher retrieves the text of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches pages over HTTP. When a cache is configured, a 429/430
// response blocks further requests to the same host for blockTime.
type HTTPFetcher struct {
	client    *http.Client
	cacheSvc  cache.CacheService
	blockTime time.Duration
	metrics   *monitoring.Metrics
	log       *logger.Logger
}

// NewHTTPFetcher creates a fetcher. cacheSvc and metrics may be nil.
func NewHTTPFetcher(client *http.Client, cacheSvc cache.CacheService, blockTime time.Duration, metrics *monitoring.Metrics) *HTTPFetcher {
	return &HTTPFetcher{
		client:    client,
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
		metrics:   metrics,
		log:       logger.ForFetcher(),
	}
}

// Fetch returns the page body. Failures are logged with the URL and returned
// as network or rate_limit errors; context errors are returned unchanged.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	blockKey := blockKeyFor(rawURL)

	if f.isBlocked(blockKey) {
		f.metrics.IncPagesFetched("blocked")
		f.log.Debug().Str("url", rawURL).Msg("Host is rate limited, skipping request")
		return "", apperrors.NewRateLimit(rawURL, f.blockTime)
	}

	body, err := helpers.FetchText(ctx, f.client, rawURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		f.metrics.IncPagesFetched("error")
		f.log.Error().Err(err).Str("url", rawURL).Msg("Error fetching HTML")

		if errors.Is(err, helpers.ErrRateLimited) {
			f.block(blockKey)
			return "", apperrors.New(apperrors.ErrorTypeRateLimit, rawURL, "rate limited by host", err)
		}
		return "", apperrors.NewNetwork(rawURL, "error fetching HTML", err)
	}

	f.metrics.IncPagesFetched("ok")
	return body, nil
}

func (f *HTTPFetcher) isBlocked(key string) bool {
	if f.cacheSvc == nil {
		return false
	}
	_, err := f.cacheSvc.Get(key)
	return err == nil
}

func (f *HTTPFetcher) block(key string) {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(f.blockTime/time.Second)))
	if err := f.cacheSvc.Set(key, value, f.blockTime); err != nil {
		logger.ForCache().Warn().Err(err).Str("key", key).Msg("Failed to store rate limit block")
		return
	}
	f.log.Warn().Str("key", key).Dur("block_time", f.blockTime).Msg("Blocking host after rate limit")
}

func blockKeyFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "block:" + rawURL
	}
	return "block:" + u.Host
}

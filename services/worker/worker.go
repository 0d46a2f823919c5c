package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sjsage522/cruisewatch/config"
	"sjsage522/cruisewatch/internal/cruise"
	"sjsage522/cruisewatch/internal/report"
	"sjsage522/cruisewatch/logger"
	apperrors "sjsage522/cruisewatch/pkg/errors"
	"sjsage522/cruisewatch/services/publisher"
)

// ReportKey is the stream field under which reports are published
const ReportKey = "report"

// Aggregator is the part of cruise.Aggregator the worker depends on
type Aggregator interface {
	Aggregate(ctx context.Context, ids []string) (*cruise.Result, error)
}

// Worker handles the periodic scrape, report and publish cycle
type Worker struct {
	aggregator    Aggregator
	ids           []string
	pricing       config.Pricing
	baseURL       string
	publisher     publisher.Publisher
	crawlInterval time.Duration
	log           *logger.Logger

	mu     sync.RWMutex
	latest *report.Report
}

// NewWorker creates a new worker. pub may be nil, in which case reports are
// only kept in memory.
func NewWorker(
	aggregator Aggregator,
	ids []string,
	pricing config.Pricing,
	baseURL string,
	pub publisher.Publisher,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		aggregator:    aggregator,
		ids:           ids,
		pricing:       pricing,
		baseURL:       baseURL,
		publisher:     pub,
		crawlInterval: crawlInterval,
		log:           logger.ForWorker(),
	}
}

// Start runs a cycle immediately and then once per crawl interval until ctx
// is cancelled. It returns nil on cancellation.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.crawlInterval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		start := time.Now()
		if _, err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error().Err(err).Msg("Scrape cycle failed")
		}
		w.log.Debug().Dur("elapsed", time.Since(start)).Msg("Scrape cycle finished")

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// RunOnce aggregates all itineraries, stores the report as the latest one and
// publishes it. A publish failure is logged and returned, but the report is
// still kept.
func (w *Worker) RunOnce(ctx context.Context) (*report.Report, error) {
	result, err := w.aggregator.Aggregate(ctx, w.ids)
	if err != nil {
		return nil, err
	}

	r := report.Build(result, w.pricing, w.baseURL)
	w.setLatest(r)

	w.log.Info().
		Str("state", string(r.State)).
		Int("rows", len(r.Rows)).
		Int("failures", len(r.Failures)).
		Float64("total_diff", r.TotalDiff).
		Msg("Report built")

	if err := w.publish(ctx, r); err != nil {
		w.log.Error().Err(err).Msg("Failed to publish report")
		return r, err
	}
	return r, nil
}

func (w *Worker) publish(ctx context.Context, r *report.Report) error {
	if w.publisher == nil {
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return apperrors.NewPublisher("", "failed to encode report", err)
	}

	if err := w.publisher.Publish(ctx, ReportKey, data); err != nil {
		return apperrors.NewPublisher("", "failed to publish report", err)
	}

	if err := w.publisher.TrimStreams(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Failed to trim streams")
	}
	return nil
}

func (w *Worker) setLatest(r *report.Report) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest = r
}

// Latest returns the most recent report, or nil before the first cycle completes
func (w *Worker) Latest() *report.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

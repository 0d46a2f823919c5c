package cruise

import (
	"context"
	"time"

	"sjsage522/cruisewatch/config"
	"sjsage522/cruisewatch/internal/monitoring"
	"sjsage522/cruisewatch/logger"
	apperrors "sjsage522/cruisewatch/pkg/errors"
)

// Aggregator collects normalized sailings for a list of itinerary identifiers.
// Requests are made one at a time, in list order and then array order.
type Aggregator struct {
	fetcher Fetcher
	baseURL string
	metrics *monitoring.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewAggregator creates an aggregator fetching pages below baseURL. metrics may be nil.
func NewAggregator(fetcher Fetcher, baseURL string, metrics *monitoring.Metrics) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		baseURL: baseURL,
		metrics: metrics,
		log:     logger.ForAggregator(),
		now:     time.Now,
	}
}

// batch is what a single itinerary identifier contributes to a Result
type batch struct {
	itineraries []NormalizedItinerary
	failures    []Failure
}

// fold appends one itinerary's batch to the running result
func fold(acc Result, b batch) Result {
	acc.Itineraries = append(acc.Itineraries, b.itineraries...)
	acc.Failures = append(acc.Failures, b.failures...)
	for _, it := range b.itineraries {
		for _, s := range it.Staterooms {
			acc.CabinTypes.Add(s.Title)
		}
	}
	return acc
}

// Aggregate runs the whole load. Per-itinerary and per-sailing failures are
// logged and recorded in Result.Failures; the only error returned is the
// context's, in which case no partial result is returned.
func (a *Aggregator) Aggregate(ctx context.Context, ids []string) (*Result, error) {
	result := Result{StartedAt: a.now()}

	for _, id := range ids {
		b, err := a.collectItinerary(ctx, id)
		if err != nil {
			return nil, err
		}
		result = fold(result, b)
	}

	result.FinishedAt = a.now()
	a.metrics.AddSailings(len(result.Itineraries))
	a.metrics.ObserveRun(result.StartedAt, result.FinishedAt)

	a.log.Info().
		Int("itineraries", len(ids)).
		Int("sailings", len(result.Itineraries)).
		Int("failures", len(result.Failures)).
		Str("state", string(result.State())).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Aggregation finished")

	return &result, nil
}

func (a *Aggregator) collectItinerary(ctx context.Context, id string) (batch, error) {
	var b batch
	log := logger.ForItinerary(id)
	pageURL := a.ItineraryURL(id)

	if err := ctx.Err(); err != nil {
		return b, err
	}

	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return b, ctxErr
		}
		b.failures = append(b.failures, a.failure(id, "", pageURL, err))
		log.Warn().Err(err).Str("url", pageURL).Msg("Skipping itinerary: page unavailable")
		return b, nil
	}

	sailings, err := ExtractSailings(page)
	if err != nil {
		b.failures = append(b.failures, a.failure(id, "", pageURL, err))
		log.Error().Err(err).Str("url", pageURL).Msg("Skipping itinerary: no sailings extracted")
		return b, nil
	}

	log.Debug().Int("sailings", len(sailings)).Msg("Extracted sailings")

	for _, sailing := range sailings {
		if err := ctx.Err(); err != nil {
			return b, err
		}

		if sailing.SailStartDate == 0 {
			err := apperrors.NewParsing(id, "sailing has no sailStartDate", nil)
			b.failures = append(b.failures, a.failure(id, sailing.ItineraryCode, pageURL, err))
			log.Warn().Err(err).
				Str("itinerary_code", sailing.ItineraryCode).
				Str("url", pageURL).
				Msg("Skipping sailing")
			continue
		}

		meta, titleURL, err := a.titleFor(ctx, sailing.ItineraryCode)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return b, ctxErr
			}
			b.failures = append(b.failures, a.failure(id, sailing.ItineraryCode, titleURL, err))
			log.Warn().Err(err).
				Str("itinerary_code", sailing.ItineraryCode).
				Str("url", titleURL).
				Msg("Skipping sailing")
			continue
		}

		b.itineraries = append(b.itineraries, Normalize(sailing, meta))
	}

	return b, nil
}

// titleFor fetches the page of an itinerary code and parses its title
func (a *Aggregator) titleFor(ctx context.Context, code string) (TitleMetadata, string, error) {
	if code == "" {
		return TitleMetadata{}, "", apperrors.NewExtraction("", "sailing has no itineraryCode")
	}

	pageURL := a.ItineraryURL(code)
	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return TitleMetadata{}, pageURL, err
	}

	title, err := ExtractTitle(page)
	if err != nil {
		return TitleMetadata{}, pageURL, err
	}

	meta, err := ParseTitle(title)
	return meta, pageURL, err
}

// ItineraryURL is the page of an itinerary identifier or sailing code
func (a *Aggregator) ItineraryURL(id string) string {
	return config.JoinURL(a.baseURL, id)
}

func (a *Aggregator) failure(id, code, pageURL string, err error) Failure {
	kind := apperrors.TypeOf(err)
	a.metrics.IncFailures(string(kind))

	return Failure{
		ItineraryID:   id,
		ItineraryCode: code,
		URL:           pageURL,
		Kind:          kind,
		Message:       err.Error(),
	}
}

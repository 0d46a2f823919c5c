package cruise

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

const (
	blissID    = "BLISS7SEAJNUSGYKTNVICSEA"
	jewelID    = "JEWEL9SEASITSGYJNUICYKTNVICSEA"
	blissTitle = "7-Day Alaska Round-Trip Seattle from Seattle, Washington on Norwegian Bliss"
)

func blissFetcher() *stubFetcher {
	f := newStubFetcher()
	f.pages[testBase+blissID] = sailingsPage(blissSailings)
	// the listing page doubles as the sailing's title page, as on the live site
	return f
}

func TestAggregate(t *testing.T) {
	f := blissFetcher()
	agg := NewAggregator(f, testBase, nil)

	result, err := agg.Aggregate(context.Background(), []string{blissID})
	require.NoError(t, err)

	want := []NormalizedItinerary{
		{
			Cruise:        "7-Day Alaska Round-Trip Seattle",
			From:          "Seattle, Washington",
			Ship:          "Bliss",
			ItineraryCode: blissID,
			SailDate:      "September 27, 2025",
			SailStart:     EpochMillis(sept27).Time(),
			Staterooms: []Stateroom{
				{Title: "Inside", Price: 700},
				{Title: "Oceanview", Price: 950},
				{Title: "Balcony", Price: 1700},
			},
		},
		{
			Cruise:        "7-Day Alaska Round-Trip Seattle",
			From:          "Seattle, Washington",
			Ship:          "Bliss",
			ItineraryCode: blissID,
			SailDate:      "October 4, 2025",
			SailStart:     EpochMillis(oct4).Time(),
			Staterooms: []Stateroom{
				{Title: "Inside", Price: 1220},
				{Title: "Balcony", Price: 1662},
				{Title: "Suite", Price: 4100},
			},
		},
	}
	if diff := cmp.Diff(want, result.Itineraries); diff != "" {
		t.Errorf("itineraries mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"Inside", "Oceanview", "Balcony", "Suite"}, result.CabinTypes.Labels())
	assert.Empty(t, result.Failures)
	assert.Equal(t, StateLoaded, result.State())

	// listing page, then one title request per sailing, in order
	assert.Equal(t, []string{testBase + blissID, testBase + blissID, testBase + blissID}, f.called)
}

func TestAggregateIsDeterministic(t *testing.T) {
	ids := []string{jewelID, blissID}

	run := func() *Result {
		f := blissFetcher()
		f.pages[testBase+jewelID] = sailingsPage(`[{"itineraryCode":"JEWEL9SEASITSGYJNUICYKTNVICSEA","sailStartDate":1759536000000,"staterooms":[{"title":"Balcony","price":1800}]}]`)
		// the jewel listing page carries its own title
		result, err := NewAggregator(f, testBase, nil).Aggregate(context.Background(), ids)
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	if diff := cmp.Diff(first.Itineraries, second.Itineraries); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.CabinTypes.Labels(), second.CabinTypes.Labels())

	require.Len(t, first.Itineraries, 3)
	assert.Equal(t, jewelID, first.Itineraries[0].ItineraryCode)
	assert.Equal(t, blissID, first.Itineraries[1].ItineraryCode)
	assert.Equal(t, []string{"Balcony", "Inside", "Oceanview", "Suite"}, first.CabinTypes.Labels())
}

func TestAggregateSkipsMissingEndMarker(t *testing.T) {
	f := blissFetcher()
	f.pages[testBase+jewelID] = `<div data-pricing-sailings="[{&quot;itineraryCode&quot;:&quot;X&quot;}]"></div>`

	result, err := NewAggregator(f, testBase, nil).Aggregate(context.Background(), []string{jewelID, blissID})
	require.NoError(t, err)

	assert.Len(t, result.Itineraries, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, jewelID, result.Failures[0].ItineraryID)
	assert.Equal(t, apperrors.ErrorTypeExtraction, result.Failures[0].Kind)
	assert.Equal(t, StateLoaded, result.State())
}

func TestAggregateSkipsFailedSailings(t *testing.T) {
	f := newStubFetcher()
	f.pages[testBase+"LIST"] = sailingsPage(`[
		{"itineraryCode":"GOOD","sailStartDate":1759536000000,"staterooms":[{"title":"Inside","price":1}]},
		{"itineraryCode":"BADTITLE","sailStartDate":1759536000000,"staterooms":[{"title":"Studio","price":2}]},
		{"itineraryCode":"DOWN","sailStartDate":1759536000000,"staterooms":[{"title":"Haven","price":3}]},
		{"itineraryCode":"","sailStartDate":1759536000000,"staterooms":[]},
		{"itineraryCode":"GOOD","sailStartDate":1758931200000,"staterooms":[{"title":"Balcony","price":4}]}
	]`)
	f.pages[testBase+"GOOD"] = titlePage("Alaska from Seattle on Norwegian Encore")
	f.pages[testBase+"BADTITLE"] = titlePage("Norwegian Cruise Line")
	f.errs[testBase+"DOWN"] = apperrors.NewNetwork(testBase+"DOWN", "error fetching HTML", errors.New("connection reset"))

	result, err := NewAggregator(f, testBase, nil).Aggregate(context.Background(), []string{"LIST"})
	require.NoError(t, err)

	require.Len(t, result.Itineraries, 2)
	assert.Equal(t, "October 4, 2025", result.Itineraries[0].SailDate)
	assert.Equal(t, "September 27, 2025", result.Itineraries[1].SailDate)
	assert.Equal(t, "Encore", result.Itineraries[0].Ship)

	// cabin types from skipped sailings are not recorded
	assert.Equal(t, []string{"Inside", "Balcony"}, result.CabinTypes.Labels())

	kinds := make([]apperrors.ErrorType, 0, len(result.Failures))
	for _, failure := range result.Failures {
		kinds = append(kinds, failure.Kind)
	}
	assert.Equal(t, []apperrors.ErrorType{
		apperrors.ErrorTypeTitleShape,
		apperrors.ErrorTypeNetwork,
		apperrors.ErrorTypeExtraction,
	}, kinds)
	assert.Equal(t, "BADTITLE", result.Failures[0].ItineraryCode)
	assert.Equal(t, testBase+"BADTITLE", result.Failures[0].URL)
}

func TestAggregateSkipsSailingsWithoutDate(t *testing.T) {
	f := newStubFetcher()
	f.pages[testBase+"LIST"] = sailingsPage(`[
		{"itineraryCode":"NODATE","staterooms":[{"title":"Inside","price":1}]},
		{"itineraryCode":"NULLDATE","sailStartDate":null,"staterooms":[{"title":"Studio","price":2}]},
		{"itineraryCode":"GOOD","sailStartDate":1759536000000,"staterooms":[{"title":"Balcony","price":3}]}
	]`)
	f.pages[testBase+"GOOD"] = titlePage("Alaska from Seattle on Norwegian Encore")

	result, err := NewAggregator(f, testBase, nil).Aggregate(context.Background(), []string{"LIST"})
	require.NoError(t, err)

	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, "October 4, 2025", result.Itineraries[0].SailDate)
	assert.Equal(t, []string{"Balcony"}, result.CabinTypes.Labels())

	require.Len(t, result.Failures, 2)
	for i, code := range []string{"NODATE", "NULLDATE"} {
		assert.Equal(t, code, result.Failures[i].ItineraryCode)
		assert.Equal(t, apperrors.ErrorTypeParsing, result.Failures[i].Kind)
		assert.Equal(t, testBase+"LIST", result.Failures[i].URL)
	}

	// no title page is requested for a sailing without a date
	assert.Equal(t, []string{testBase + "LIST", testBase + "GOOD"}, f.called)
}

func TestAggregateStates(t *testing.T) {
	f := newStubFetcher()
	f.pages[testBase+"EMPTY"] = sailingsPage(`[]`)

	result, err := NewAggregator(f, testBase, nil).Aggregate(context.Background(), []string{"EMPTY"})
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, result.State())

	result, err = NewAggregator(f, testBase, nil).Aggregate(context.Background(), []string{"UNKNOWN"})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State())
	assert.Equal(t, 0, result.CabinTypes.Len())
}

func TestAggregateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := blissFetcher()
	f.pages[testBase+jewelID] = sailingsPage(blissSailings)
	f.onCall = func(url string) {
		// cancel while the first title request is in flight
		if len(f.called) == 2 {
			cancel()
		}
	}

	result, err := NewAggregator(f, testBase, nil).Aggregate(ctx, []string{blissID, jewelID})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)

	// nothing is requested after cancellation
	assert.Len(t, f.called, 2)
}

package cruise

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

// EpochMillis is a Unix timestamp in milliseconds. Pages carry it either as
// a JSON number or as a numeric string.
type EpochMillis int64

// UnmarshalJSON accepts 1759536000000 as well as "1759536000000". null
// leaves the zero value, which the aggregator rejects.
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// large timestamps are sometimes written as floats
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("invalid epoch milliseconds %q: %w", data, err)
		}
		ms = int64(f)
	}
	*e = EpochMillis(ms)
	return nil
}

// Time returns the instant in UTC
func (e EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(e)).UTC()
}

// Stateroom is one cabin type and its price for a sailing
type Stateroom struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// SailingRecord is one entry of the data-pricing-sailings array
type SailingRecord struct {
	ItineraryCode string      `json:"itineraryCode"`
	SailStartDate EpochMillis `json:"sailStartDate"`
	Staterooms    []Stateroom `json:"staterooms"`
}

// TitleMetadata is the decomposed "<cruise> from <origin> on <ship>" page title
type TitleMetadata struct {
	Cruise string `json:"cruise"`
	From   string `json:"from"`
	Ship   string `json:"ship"`
}

// NormalizedItinerary is one sailing joined with its title metadata
type NormalizedItinerary struct {
	Cruise        string      `json:"cruise"`
	From          string      `json:"from"`
	Ship          string      `json:"ship"`
	ItineraryCode string      `json:"itineraryCode"`
	SailDate      string      `json:"sailDate"`
	SailStart     time.Time   `json:"sailStart"`
	Staterooms    []Stateroom `json:"staterooms"`
}

// Stateroom returns the cabin of the given type, if the sailing offers it
func (n NormalizedItinerary) Stateroom(title string) (Stateroom, bool) {
	for _, s := range n.Staterooms {
		if s.Title == title {
			return s, true
		}
	}
	return Stateroom{}, false
}

// Normalize joins a sailing with the metadata parsed from its page title
func Normalize(s SailingRecord, meta TitleMetadata) NormalizedItinerary {
	staterooms := make([]Stateroom, len(s.Staterooms))
	copy(staterooms, s.Staterooms)

	return NormalizedItinerary{
		Cruise:        meta.Cruise,
		From:          meta.From,
		Ship:          meta.Ship,
		ItineraryCode: s.ItineraryCode,
		SailDate:      FormatSailDate(s.SailStartDate),
		SailStart:     s.SailStartDate.Time(),
		Staterooms:    staterooms,
	}
}

// CabinTypeSet is the set of stateroom titles seen in one load, in first-seen order
type CabinTypeSet struct {
	order []string
	seen  map[string]struct{}
}

// NewCabinTypeSet builds a set from labels
func NewCabinTypeSet(labels ...string) CabinTypeSet {
	var s CabinTypeSet
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts a label, keeping the first-seen position of duplicates
func (s *CabinTypeSet) Add(label string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[label]; ok {
		return
	}
	s.seen[label] = struct{}{}
	s.order = append(s.order, label)
}

// Contains reports whether label is in the set
func (s CabinTypeSet) Contains(label string) bool {
	_, ok := s.seen[label]
	return ok
}

// Labels returns a copy of the labels in first-seen order
func (s CabinTypeSet) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of labels
func (s CabinTypeSet) Len() int {
	return len(s.order)
}

func (s CabinTypeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

func (s *CabinTypeSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewCabinTypeSet(labels...)
	return nil
}

// Failure records one itinerary or sailing that yielded no data
type Failure struct {
	ItineraryID   string              `json:"itineraryId"`
	ItineraryCode string              `json:"itineraryCode,omitempty"`
	URL           string              `json:"url"`
	Kind          apperrors.ErrorType `json:"kind"`
	Message       string              `json:"message"`
}

// State distinguishes an empty load from a failed one
type State string

const (
	StateLoaded State = "loaded"
	StateEmpty  State = "empty"
	StateFailed State = "failed"
)

// Result is the output of one aggregation run
type Result struct {
	Itineraries []NormalizedItinerary `json:"itineraries"`
	CabinTypes  CabinTypeSet          `json:"cabinTypes"`
	Failures    []Failure             `json:"failures,omitempty"`
	StartedAt   time.Time             `json:"startedAt"`
	FinishedAt  time.Time             `json:"finishedAt"`
}

// State reports loaded when any sailing was collected, otherwise failed or empty
func (r *Result) State() State {
	switch {
	case len(r.Itineraries) > 0:
		return StateLoaded
	case len(r.Failures) > 0:
		return StateFailed
	default:
		return StateEmpty
	}
}

package report

import (
	"fmt"
	"strconv"
	"time"

	"sjsage522/cruisewatch/config"
	"sjsage522/cruisewatch/internal/cruise"
)

// CellStatus describes how a price cell compares with the baseline
type CellStatus string

const (
	// StatusMuted is any price on a sailing other than the booked one
	StatusMuted CellStatus = "muted"
	// StatusPlain is a booked price equal to the baseline
	StatusPlain CellStatus = "plain"
	// StatusCheaper is a booked price below the baseline
	StatusCheaper CellStatus = "cheaper"
	// StatusPricier is a booked price above the baseline
	StatusPricier CellStatus = "pricier"
	// StatusMissing means the sailing does not offer the cabin type
	StatusMissing CellStatus = "missing"
)

// Cell is one price column of a row
type Cell struct {
	CabinType string     `json:"cabinType"`
	Price     float64    `json:"price"`
	Reference float64    `json:"reference,omitempty"`
	Diff      float64    `json:"diff"`
	Status    CellStatus `json:"status"`
	Text      string     `json:"text"`
}

// Row is one sailing. GroupStart rows carry the cruise/origin header cells,
// which span RowSpan rows.
type Row struct {
	Cruise        string `json:"cruise"`
	From          string `json:"from"`
	Ship          string `json:"ship"`
	ItineraryCode string `json:"itineraryCode"`
	Link          string `json:"link"`
	SailDate      string `json:"sailDate"`
	Booked        bool   `json:"booked"`
	GroupStart    bool   `json:"groupStart"`
	RowSpan       int    `json:"rowSpan,omitempty"`
	Cells         []Cell `json:"cells"`
}

// Report is the rendered view of one aggregation
type Report struct {
	State         cruise.State     `json:"state"`
	ReferenceDate string           `json:"referenceDate"`
	Columns       []string         `json:"columns"`
	Rows          []Row            `json:"rows"`
	TotalDiff     float64          `json:"totalDiff"`
	Failures      []cruise.Failure `json:"failures,omitempty"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// Columns returns the cabin types to render: those in the set that have a
// baseline price, in first-seen order.
func Columns(set cruise.CabinTypeSet, pricing config.Pricing) []string {
	var cols []string
	for _, label := range set.Labels() {
		if pricing.Tracks(label) {
			cols = append(cols, label)
		}
	}
	return cols
}

// Build groups the result's sailings and prices every whitelisted cell.
// baseURL is used for the link on each group header.
func Build(result *cruise.Result, pricing config.Pricing, baseURL string) *Report {
	r := &Report{
		State:         result.State(),
		ReferenceDate: pricing.ReferenceDate.UTC().Format(cruise.SailDateLayout),
		Columns:       Columns(result.CabinTypes, pricing),
		Failures:      result.Failures,
		GeneratedAt:   result.FinishedAt,
	}

	for _, g := range GroupItineraries(result.Itineraries) {
		link := config.JoinURL(baseURL, g.Members[0].ItineraryCode)

		for i, it := range g.Members {
			booked := pricing.IsReferenceDay(it.SailStart)
			row := Row{
				Cruise:        it.Cruise,
				From:          it.From,
				Ship:          it.Ship,
				ItineraryCode: it.ItineraryCode,
				Link:          link,
				SailDate:      it.SailDate,
				Booked:        booked,
				GroupStart:    i == 0,
			}
			if row.GroupStart {
				row.RowSpan = len(g.Members)
			}

			for _, label := range r.Columns {
				cell := BuildCell(it, label, booked, pricing)
				r.TotalDiff += cell.Diff
				row.Cells = append(row.Cells, cell)
			}
			r.Rows = append(r.Rows, row)
		}
	}

	return r
}

// BuildCell prices one cabin type of a sailing against the baseline
func BuildCell(it cruise.NormalizedItinerary, label string, booked bool, pricing config.Pricing) Cell {
	cell := Cell{CabinType: label}

	stateroom, ok := it.Stateroom(label)
	if !ok {
		cell.Status = StatusMissing
		cell.Text = "—"
		return cell
	}
	cell.Price = stateroom.Price

	if !booked {
		cell.Status = StatusMuted
		cell.Text = "$ " + FormatPrice(stateroom.Price)
		return cell
	}

	reference, _ := pricing.ReferencePrice(label)
	cell.Reference = reference
	cell.Diff = stateroom.Price - reference

	switch {
	case stateroom.Price < reference:
		cell.Status = StatusCheaper
	case stateroom.Price > reference:
		cell.Status = StatusPricier
	default:
		cell.Status = StatusPlain
		cell.Text = "$ " + FormatPrice(stateroom.Price)
		return cell
	}

	cell.Text = fmt.Sprintf("*** $%s *** (%s)", FormatPrice(stateroom.Price), FormatPrice(reference))
	return cell
}

// HasBooked reports whether any row is the booked sailing
func (r *Report) HasBooked() bool {
	for _, row := range r.Rows {
		if row.Booked {
			return true
		}
	}
	return false
}

// FormatPrice prints a price without trailing zeros
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

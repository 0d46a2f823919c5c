package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"sjsage522/cruisewatch/logger"
	apperrors "sjsage522/cruisewatch/pkg/errors"
)

// ReferenceDateLayout is the layout of referenceDate in pricing files
const ReferenceDateLayout = "2006-01-02"

// Pricing is the baseline a booked sailing is compared against. The labels
// in Prices are also the only cabin types rendered as columns.
type Pricing struct {
	ReferenceDate time.Time
	Prices        map[string]float64
}

// pricingFile is the on-disk shape of a pricing file
type pricingFile struct {
	ReferenceDate string             `json:"referenceDate"`
	Prices        map[string]float64 `json:"prices"`
}

// DefaultPricing returns the baseline for the October 4, 2025 booking
func DefaultPricing() Pricing {
	return Pricing{
		ReferenceDate: time.Date(2025, time.October, 4, 0, 0, 0, 0, time.UTC),
		Prices: map[string]float64{
			"Inside":  1220,
			"Balcony": 1662,
		},
	}
}

// IsReferenceDay reports whether t falls on the reference date, compared as UTC calendar days
func (p Pricing) IsReferenceDay(t time.Time) bool {
	ty, tm, td := t.UTC().Date()
	ry, rm, rd := p.ReferenceDate.UTC().Date()
	return ty == ry && tm == rm && td == rd
}

// ReferencePrice returns the baseline price for a cabin type
func (p Pricing) ReferencePrice(label string) (float64, bool) {
	price, ok := p.Prices[label]
	return price, ok
}

// Tracks reports whether a cabin type is on the column whitelist
func (p Pricing) Tracks(label string) bool {
	_, ok := p.Prices[label]
	return ok
}

// Labels returns the whitelisted cabin types in sorted order
func (p Pricing) Labels() []string {
	labels := make([]string, 0, len(p.Prices))
	for label := range p.Prices {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// LoadPricing reads a pricing file. An empty path yields DefaultPricing.
//
// For a path like pricing.json5, pricing.local.json5 is merged over it when
// present; at least one of the two files must exist.
func LoadPricing(path string) (Pricing, error) {
	if path == "" {
		return DefaultPricing(), nil
	}

	raw, err := readPricingFile(path)
	if err != nil {
		return Pricing{}, apperrors.NewConfiguration(fmt.Sprintf("failed to read pricing file %s", path), err)
	}

	ref, err := time.ParseInLocation(ReferenceDateLayout, strings.TrimSpace(raw.ReferenceDate), time.UTC)
	if err != nil {
		return Pricing{}, apperrors.NewConfiguration("referenceDate must be formatted as YYYY-MM-DD", err)
	}
	if len(raw.Prices) == 0 {
		return Pricing{}, apperrors.NewConfiguration("pricing file must list at least one cabin type price", nil)
	}

	return Pricing{ReferenceDate: ref, Prices: raw.Prices}, nil
}

func readPricingFile(path string) (pricingFile, error) {
	var out pricingFile
	found := false

	base, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, err
		}
		found = true
	}

	localPath := localVariant(path)
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override pricingFile
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		logger.Debug("merged pricing with local overrides from %s", localPath)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// localVariant turns dir/name.ext into dir/name.local.ext
func localVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

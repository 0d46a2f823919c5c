package cruise

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

// Markers around the sailings attribute on an itinerary page
const (
	SailingsStartMarker = "data-pricing-sailings="
	SailingsEndMarker   = "data-pricing-offer-groups="
)

// TextBetween returns the text between the first start marker and the first
// end marker after it, without one surrounding pair of double quotes.
func TextBetween(text, start, end string) (string, bool) {
	startIndex := strings.Index(text, start)
	if startIndex == -1 {
		return "", false
	}
	from := startIndex + len(start)

	endOffset := strings.Index(text[from:], end)
	if endOffset == -1 {
		return "", false
	}

	result := strings.TrimSpace(text[from : from+endOffset])
	result = strings.TrimPrefix(result, `"`)
	result = strings.TrimSuffix(result, `"`)
	return result, true
}

// LocateSailings finds the embedded sailings attribute, decodes its HTML
// entities and returns the JSON array text inside it.
func LocateSailings(page string) (string, error) {
	raw, ok := TextBetween(page, SailingsStartMarker, SailingsEndMarker)
	if !ok {
		return "", apperrors.NewExtraction("", "failed to extract data string between markers")
	}

	// Some pages escape the attribute twice, leaving &quot; after one pass.
	decoded := html.UnescapeString(raw)
	decoded = strings.ReplaceAll(decoded, "&quot;", `"`)

	first := strings.IndexByte(decoded, '[')
	last := strings.LastIndexByte(decoded, ']')
	if first == -1 || last == -1 {
		return "", apperrors.NewExtraction("", "no bracketed array in sailings attribute")
	}
	if last < first {
		return "", apperrors.NewExtraction("", "closing bracket precedes opening bracket in sailings attribute")
	}

	return decoded[first : last+1], nil
}

// ExtractSailings returns the sailing records embedded in an itinerary page.
func ExtractSailings(page string) ([]SailingRecord, error) {
	text, err := LocateSailings(page)
	if err != nil {
		return nil, err
	}

	var sailings []SailingRecord
	if err := json.Unmarshal([]byte(text), &sailings); err != nil {
		return nil, apperrors.NewParsing("", "error parsing sailings JSON", err)
	}
	return sailings, nil
}

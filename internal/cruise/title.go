package cruise

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

const (
	fromDelimiter = " from "
	onDelimiter   = " on "
	shipPrefix    = "Norwegian "
)

// ExtractTitle returns the entity-decoded text of the page's first <title>.
func ExtractTitle(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", apperrors.NewParsing("", "HTML parsing error", err)
	}

	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", apperrors.NewExtraction("", "page has no <title> element")
	}
	return strings.TrimSpace(sel.Text()), nil
}

// ParseTitle splits "<cruise> from <origin> on <ship>" on the first " from "
// and then the first " on " after it. A leading "Norwegian " is removed from
// the ship name.
//
// Names that themselves contain " from " or " on " are split at the wrong
// place; there is no escaping scheme in the titles.
func ParseTitle(title string) (TitleMetadata, error) {
	cruise, rest, ok := strings.Cut(title, fromDelimiter)
	if !ok {
		return TitleMetadata{}, apperrors.NewTitleShape("", fmt.Sprintf("title %q has no %q", title, fromDelimiter))
	}

	from, ship, ok := strings.Cut(rest, onDelimiter)
	if !ok {
		return TitleMetadata{}, apperrors.NewTitleShape("", fmt.Sprintf("title %q has no %q after %q", title, onDelimiter, fromDelimiter))
	}

	return TitleMetadata{
		Cruise: cruise,
		From:   from,
		Ship:   strings.TrimPrefix(ship, shipPrefix),
	}, nil
}

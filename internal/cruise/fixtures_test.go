package cruise

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// sailingsPage renders an itinerary listing page embedding sailingsJSON the
// way the live site does: quotes escaped as &quot; inside the attribute.
func sailingsPage(sailingsJSON string) string {
	escaped := strings.ReplaceAll(sailingsJSON, "&", "&amp;")
	escaped = strings.ReplaceAll(escaped, `"`, "&quot;")
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>7-Day Alaska Round-Trip Seattle from Seattle, Washington on Norwegian Bliss</title></head>
<body>
  <div class="c-pricing" data-pricing-sailings="%s" data-pricing-offer-groups="[]" data-currency="USD"></div>
</body>
</html>`, escaped)
}

// titlePage renders an itinerary page with the given raw <title> markup
func titlePage(rawTitle string) string {
	return fmt.Sprintf("<html><head><meta charset=\"utf-8\"><title>%s</title></head><body></body></html>", rawTitle)
}

// stubFetcher serves pages from a map and records requested URLs in order
type stubFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
	onCall func(url string)
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	s.called = append(s.called, url)
	onCall := s.onCall
	s.mu.Unlock()

	if onCall != nil {
		onCall(url)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	if page, ok := s.pages[url]; ok {
		return page, nil
	}
	return "", fmt.Errorf("fetch %s unexpected status code: 404", url)
}

const (
	testBase = "https://www.ncl.com/cruises/"

	// 2025-09-27T00:00:00Z and 2025-10-04T00:00:00Z
	sept27 = 1758931200000
	oct4   = 1759536000000
)

const blissSailings = `[{"itineraryCode":"BLISS7SEAJNUSGYKTNVICSEA","sailStartDate":1758931200000,"staterooms":[{"title":"Inside","price":700},{"title":"Oceanview","price":950},{"title":"Balcony","price":1700}]},{"itineraryCode":"BLISS7SEAJNUSGYKTNVICSEA","sailStartDate":1759536000000,"staterooms":[{"title":"Inside","price":1220},{"title":"Balcony","price":1662},{"title":"Suite","price":4100}]}]`

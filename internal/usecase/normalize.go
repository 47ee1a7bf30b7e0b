package usecase

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mediawatch/internal/domain"
	"mediawatch/internal/source"
)

const (
	maxDescriptionRunes = 200
	fallbackOutlet      = "Unknown"
	dateFormat          = "2006-01-02"
)

// Source timestamps arrive in whatever layout the upstream feed uses; exact
// wire fidelity is not required, only a sortable calendar date.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05.0000000Z",
	dateFormat,
}

// assemble converts a raw feed item into a canonical coverage record. It
// returns false when a required field is missing, which callers treat as a
// silent skip rather than an error.
func assemble(raw source.Item, term, sourceName string, now time.Time) (domain.CoverageItem, bool) {
	headline := strings.TrimSpace(raw.Title)
	link := strings.TrimSpace(raw.Link)
	if headline == "" || link == "" {
		return domain.CoverageItem{}, false
	}

	outlet := strings.TrimSpace(raw.Outlet)
	if outlet == "" {
		outlet = fallbackOutlet
	}

	return domain.CoverageItem{
		ID:            domain.NewID(now),
		Headline:      headline,
		URL:           link,
		Outlet:        outlet,
		PublishedDate: parseDate(raw.PublishedRaw, now),
		Description:   truncateRunes(stripHTML(raw.Description), maxDescriptionRunes),
		Category:      domain.Classify(headline, link),
		SearchTerm:    term,
		SourceName:    sourceName,
		Approved:      false,
		DiscoveredAt:  now.UTC(),
	}, true
}

func parseDate(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC().Format(dateFormat)
		}
	}
	return now.UTC().Format(dateFormat)
}

func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

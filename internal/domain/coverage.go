package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Category buckets a coverage item by the kind of media it points at.
type Category string

const (
	CategoryNews      Category = "news"
	CategoryVideo     Category = "video"
	CategorySocial    Category = "social"
	CategoryInterview Category = "interview"
	CategoryPress     Category = "press"
)

// CoverageItem is one discovered piece of media coverage, before or after moderation.
type CoverageItem struct {
	ID            string    `json:"id"`
	Headline      string    `json:"headline"`
	URL           string    `json:"url"`
	Outlet        string    `json:"outlet"`
	PublishedDate string    `json:"publishedDate"` // YYYY-MM-DD
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	SearchTerm    string    `json:"searchTerm"`
	SourceName    string    `json:"sourceName"`
	Approved      bool      `json:"approved"`
	DiscoveredAt  time.Time `json:"discoveredAt"`
}

// Breakdown counts items per category for one aggregation run.
type Breakdown struct {
	News      int `json:"news"`
	Video     int `json:"video"`
	Interview int `json:"interview"`
	Social    int `json:"social"`
	Press     int `json:"press"`
}

// Add increments the counter matching the given category.
func (b *Breakdown) Add(c Category) {
	switch c {
	case CategoryVideo:
		b.Video++
	case CategorySocial:
		b.Social++
	case CategoryInterview:
		b.Interview++
	case CategoryPress:
		b.Press++
	default:
		b.News++
	}
}

// NewID returns an identifier unique enough within one run; records are never
// looked up by ID across runs, so a time+random composite is sufficient.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%06x", now.UnixMilli(), rand.Int31n(1<<24))
}

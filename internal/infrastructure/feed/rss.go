package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"mediawatch/internal/config"
	"mediawatch/internal/source"
)

// RSSClient reads a fixed set of outlet-specific feeds and keeps the entries
// that mention the search term. Outlet feeds are well-formed, so a real feed
// parser is used here instead of the tolerant extraction the search feeds need.
type RSSClient struct {
	parser   *gofeed.Parser
	outlets  []config.OutletFeed
	timeout  time.Duration
	maxItems int
	logger   *slog.Logger
}

var _ source.Client = (*RSSClient)(nil)

// NewRSSClient wires the configured outlet feeds.
func NewRSSClient(outlets []config.OutletFeed, timeout time.Duration, maxItems int, logger *slog.Logger) *RSSClient {
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	if maxItems <= 0 {
		maxItems = defaultMaxPerFeed
	}
	return &RSSClient{
		parser:   gofeed.NewParser(),
		outlets:  outlets,
		timeout:  timeout,
		maxItems: maxItems,
		logger:   logger,
	}
}

// Name identifies the source inside the registry.
func (r *RSSClient) Name() string {
	return "outletrss"
}

// Search walks every configured outlet feed under a per-feed deadline. A
// broken outlet contributes nothing; the remaining outlets still report.
func (r *RSSClient) Search(ctx context.Context, term string) ([]source.Item, error) {
	needle := strings.ToLower(term)
	var items []source.Item

	for _, outlet := range r.outlets {
		feedItems, err := r.searchOutlet(ctx, outlet, needle)
		if err != nil {
			r.warn("outlet feed failed", "outlet", outlet.Name, "error", err)
			continue
		}
		items = append(items, feedItems...)
	}

	return items, nil
}

func (r *RSSClient) searchOutlet(ctx context.Context, outlet config.OutletFeed, needle string) ([]source.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	parsed, err := r.parser.ParseURLWithContext(outlet.URL, ctx)
	if err != nil {
		return nil, err
	}

	outletName := outlet.Name
	if outletName == "" {
		outletName = parsed.Title
	}

	var items []source.Item
	for _, entry := range parsed.Items {
		if len(items) >= r.maxItems {
			break
		}
		if !mentions(entry, needle) {
			continue
		}
		items = append(items, source.Item{
			Title:        entry.Title,
			Link:         entry.Link,
			Outlet:       outletName,
			PublishedRaw: publishedRaw(entry),
			Description:  entry.Description,
		})
	}

	return items, nil
}

func mentions(entry *gofeed.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entry.Title), needle) ||
		strings.Contains(strings.ToLower(entry.Description), needle)
}

func publishedRaw(entry *gofeed.Item) string {
	if entry.Published != "" {
		return entry.Published
	}
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.Format(time.RFC1123Z)
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.Format(time.RFC1123Z)
	}
	return ""
}

func (r *RSSClient) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

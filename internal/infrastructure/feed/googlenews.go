package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"mediawatch/internal/source"
)

const (
	googleNewsBaseURL  = "https://news.google.com/rss/search"
	googleNewsOutlet   = "Unknown"
	maxFeedBytes       = 1 << 20 // 1MB
	crawlerUserAgent   = "Mozilla/5.0 (compatible; JusticeForLoganBot/1.0)"
	defaultFeedTimeout = 3 * time.Second
	defaultMaxPerFeed  = 15
)

// Google News search feeds are RSS-like fragments rather than guaranteed
// well-formed XML, so fields are pulled out with tolerant expressions instead
// of a strict parser.
var (
	itemExpr    = regexp.MustCompile(`(?s)<item>.*?</item>`)
	titleExpr   = regexp.MustCompile(`(?s)<title>(?:<!\[CDATA\[)?(.*?)(?:\]\]>)?</title>`)
	linkExpr    = regexp.MustCompile(`<link>(.*?)</link>`)
	pubDateExpr = regexp.MustCompile(`<pubDate>(.*?)</pubDate>`)
	descExpr    = regexp.MustCompile(`(?s)<description>(?:<!\[CDATA\[)?(.*?)(?:\]\]>)?</description>`)
	sourceExpr  = regexp.MustCompile(`<source[^>]*>([^<]+)</source>`)
)

// GoogleNewsClient searches the Google News RSS endpoint for a term. It finds
// articles, videos and social posts alike; classification happens downstream.
type GoogleNewsClient struct {
	client   *http.Client
	baseURL  string
	timeout  time.Duration
	maxItems int
}

var _ source.Client = (*GoogleNewsClient)(nil)

// NewGoogleNewsClient wires an HTTP client; timeout and maxItems fall back to
// the crawler defaults when zero.
func NewGoogleNewsClient(client *http.Client, timeout time.Duration, maxItems int) *GoogleNewsClient {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	if maxItems <= 0 {
		maxItems = defaultMaxPerFeed
	}
	return &GoogleNewsClient{
		client:   client,
		baseURL:  googleNewsBaseURL,
		timeout:  timeout,
		maxItems: maxItems,
	}
}

// Name identifies the source inside the registry.
func (g *GoogleNewsClient) Name() string {
	return "googlenews"
}

// Search issues one bounded request for the term and extracts up to maxItems
// raw entries from the response.
func (g *GoogleNewsClient) Search(ctx context.Context, term string) ([]source.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	searchURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", g.baseURL, url.QueryEscape(term))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", crawlerUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %d", term, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	blocks := itemExpr.FindAllString(string(body), -1)
	if len(blocks) > g.maxItems {
		blocks = blocks[:g.maxItems]
	}

	items := make([]source.Item, 0, len(blocks))
	for _, block := range blocks {
		outlet := firstMatch(sourceExpr, block)
		if outlet == "" {
			outlet = googleNewsOutlet
		}
		items = append(items, source.Item{
			Title:        html.UnescapeString(firstMatch(titleExpr, block)),
			Link:         firstMatch(linkExpr, block),
			Outlet:       outlet,
			PublishedRaw: firstMatch(pubDateExpr, block),
			Description:  firstMatch(descExpr, block),
		})
	}

	return items, nil
}

func firstMatch(expr *regexp.Regexp, s string) string {
	match := expr.FindStringSubmatch(s)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mediawatch/internal/source"
)

const bingNewsOutlet = "Bing News"

// BingNewsClient queries the Bing news-search JSON API.
type BingNewsClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	maxItems int
}

var _ source.Client = (*BingNewsClient)(nil)

// NewBingNewsClient builds a client from the configured endpoint and key.
func NewBingNewsClient(client *http.Client, endpoint, apiKey string, timeout time.Duration, maxItems int) *BingNewsClient {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	if maxItems <= 0 {
		maxItems = defaultMaxPerFeed
	}
	return &BingNewsClient{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		maxItems: maxItems,
	}
}

// Name identifies the source inside the registry.
func (b *BingNewsClient) Name() string {
	return "bingnews"
}

type bingResponse struct {
	Value []struct {
		Name          string `json:"name"`
		URL           string `json:"url"`
		Description   string `json:"description"`
		DatePublished string `json:"datePublished"`
		Provider      []struct {
			Name string `json:"name"`
		} `json:"provider"`
	} `json:"value"`
}

// Search issues one bounded request for the term against the JSON API.
func (b *BingNewsClient) Search(ctx context.Context, term string) ([]source.Item, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("bing news client misconfigured: missing api key")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	searchURL := fmt.Sprintf("%s?q=%s&mkt=en-US&count=%s",
		b.endpoint, url.QueryEscape(term), strconv.Itoa(b.maxItems))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %d", term, resp.StatusCode)
	}

	var parsed bingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := parsed.Value
	if len(results) > b.maxItems {
		results = results[:b.maxItems]
	}

	items := make([]source.Item, 0, len(results))
	for _, entry := range results {
		outlet := bingNewsOutlet
		if len(entry.Provider) > 0 && entry.Provider[0].Name != "" {
			outlet = entry.Provider[0].Name
		}
		items = append(items, source.Item{
			Title:        entry.Name,
			Link:         entry.URL,
			Outlet:       outlet,
			PublishedRaw: entry.DatePublished,
			Description:  entry.Description,
		})
	}

	return items, nil
}

package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0"?>
<rss><channel>
<item>
<title><![CDATA[Vigil planned for Logan Federico]]></title>
<link>https://news.example.com/vigil</link>
<pubDate>Mon, 03 Nov 2025 14:30:00 GMT</pubDate>
<description><![CDATA[<b>Hundreds</b> expected downtown]]></description>
<source url="https://news.example.com">Example News</source>
</item>
<item>
<title>Family &amp; friends remember</title>
<link>https://news.example.com/remember</link>
</item>
</channel></rss>`

func newFeedServer(t *testing.T, handler http.HandlerFunc) *GoogleNewsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewGoogleNewsClient(srv.Client(), 0, 0)
	client.baseURL = srv.URL
	return client
}

func TestGoogleNewsSearchExtractsItems(t *testing.T) {
	t.Parallel()

	client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Logan Federico" {
			t.Errorf("unexpected query %q", got)
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "JusticeForLoganBot") {
			t.Errorf("unexpected user agent %q", ua)
		}
		fmt.Fprint(w, sampleFeed)
	})

	items, err := client.Search(context.Background(), "Logan Federico")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Vigil planned for Logan Federico" {
		t.Fatalf("CDATA title not unwrapped: %q", first.Title)
	}
	if first.Link != "https://news.example.com/vigil" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.Outlet != "Example News" {
		t.Fatalf("unexpected outlet %q", first.Outlet)
	}
	if first.PublishedRaw != "Mon, 03 Nov 2025 14:30:00 GMT" {
		t.Fatalf("unexpected pubDate %q", first.PublishedRaw)
	}

	second := items[1]
	if second.Title != "Family & friends remember" {
		t.Fatalf("entities not unescaped: %q", second.Title)
	}
	if second.Outlet != "Unknown" {
		t.Fatalf("missing source must fall back to Unknown, got %q", second.Outlet)
	}
}

func TestGoogleNewsSearchCapsItems(t *testing.T) {
	t.Parallel()

	var feed strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&feed, "<item><title>Story %d</title><link>https://news.example.com/%d</link></item>", i, i)
	}

	client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feed.String())
	})

	items, err := client.Search(context.Background(), "term")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(items) != defaultMaxPerFeed {
		t.Fatalf("expected cap at %d items, got %d", defaultMaxPerFeed, len(items))
	}
}

func TestGoogleNewsSearchMalformedFeed(t *testing.T) {
	t.Parallel()

	client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "this is not a feed at all")
	})

	items, err := client.Search(context.Background(), "term")
	if err != nil {
		t.Fatalf("a feed with no items is not an error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestGoogleNewsSearchStatusError(t *testing.T) {
	t.Parallel()

	client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.Search(context.Background(), "term"); err == nil {
		t.Fatal("non-200 response must surface as an error")
	}
}

func TestGoogleNewsSearchTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client := NewGoogleNewsClient(srv.Client(), 50*time.Millisecond, 0)
	client.baseURL = srv.URL

	start := time.Now()
	_, err := client.Search(context.Background(), "term")
	if err == nil {
		t.Fatal("hung feed must surface as an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout took %v, bound was 50ms", elapsed)
	}
}

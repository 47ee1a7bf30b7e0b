package dedup

import (
	"net/url"
	"strings"
	"sync"
)

// CanonicalKey normalizes a URL into the form used for duplicate comparison:
// lower-cased scheme+host+path with query string, fragment and a single
// trailing slash removed. The original URL is kept on the stored record; the
// key exists only for lookups.
func CanonicalKey(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(strings.ToLower(trimmed), "/")
	}

	key := parsed.Scheme + "://" + parsed.Host + parsed.Path
	key = strings.TrimSuffix(key, "/")
	return strings.ToLower(key)
}

// Filter decides whether a candidate URL is new relative to the current run and
// to previously persisted records. The run set grows as the aggregation
// proceeds; the persisted set is loaded once and never updated mid-run.
type Filter struct {
	mu        sync.Mutex
	run       map[string]struct{}
	persisted map[string]struct{}
}

// NewFilter builds a filter seeded with the persisted URLs known at run start.
func NewFilter(persistedURLs []string) *Filter {
	persisted := make(map[string]struct{}, len(persistedURLs))
	for _, u := range persistedURLs {
		persisted[CanonicalKey(u)] = struct{}{}
	}
	return &Filter{
		run:       map[string]struct{}{},
		persisted: persisted,
	}
}

// Accept reports whether the URL is new, recording it in the run set when it
// is. First occurrence wins; later duplicates are rejected.
func (f *Filter) Accept(rawURL string) bool {
	key := CanonicalKey(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.persisted[key]; ok {
		return false
	}
	if _, ok := f.run[key]; ok {
		return false
	}
	f.run[key] = struct{}{}
	return true
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mediawatch/internal/dedup"
	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
	"mediawatch/internal/source"
)

const defaultGlobalBudget = 9 * time.Second

// RunResult is the outcome of one aggregation run.
type RunResult struct {
	Items           []domain.CoverageItem `json:"links"`
	Count           int                   `json:"count"`
	Breakdown       domain.Breakdown      `json:"breakdown"`
	ExecutionTimeMs int64                 `json:"executionTimeMs"`
}

// CrawlerDeps wires the feed clients and the driven adapters into the run.
// Archive, Snapshot and Notifier are optional; a nil adapter degrades the
// related side effect rather than the run.
type CrawlerDeps struct {
	Clients  []source.Client
	Terms    []string
	Store    ports.ContentStore
	Archive  ports.ArchiveRepository
	Snapshot ports.SnapshotStore
	Notifier ports.Notifier
	Budget   time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Crawler fans out to every (source, term) pair under a global wall-clock
// budget, then merges, deduplicates and sorts whatever completed in time.
type Crawler struct {
	clients  []source.Client
	terms    []string
	store    ports.ContentStore
	archive  ports.ArchiveRepository
	snapshot ports.SnapshotStore
	notifier ports.Notifier
	budget   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewCrawler constructs the aggregation component.
func NewCrawler(deps CrawlerDeps) *Crawler {
	budget := deps.Budget
	if budget <= 0 {
		budget = defaultGlobalBudget
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		clients:  deps.Clients,
		terms:    deps.Terms,
		store:    deps.Store,
		archive:  deps.Archive,
		snapshot: deps.Snapshot,
		notifier: deps.Notifier,
		budget:   budget,
		logger:   logger,
		now:      now,
	}
}

type taskResult struct {
	sourceName string
	term       string
	items      []source.Item
}

// Run executes one aggregation. Individual source failures contribute zero
// records; only an empty task list fails the run itself.
func (c *Crawler) Run(ctx context.Context) (RunResult, error) {
	start := c.now()

	if len(c.clients) == 0 {
		return RunResult{}, fmt.Errorf("no feed sources configured")
	}
	if len(c.terms) == 0 {
		return RunResult{}, fmt.Errorf("no search terms configured")
	}

	filter := dedup.NewFilter(c.loadPersistedURLs(ctx))

	runCtx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	tasks := len(c.clients) * len(c.terms)
	results := make(chan taskResult, tasks)

	for _, client := range c.clients {
		for _, term := range c.terms {
			go func(client source.Client, term string) {
				items, err := client.Search(runCtx, term)
				if err != nil {
					c.logger.Warn("source search failed",
						"source", client.Name(), "term", term, "error", err)
					results <- taskResult{sourceName: client.Name(), term: term}
					return
				}
				results <- taskResult{sourceName: client.Name(), term: term, items: items}
			}(client, term)
		}
	}

	// Single collector loop: all task completions funnel through here, so the
	// dedup filter sees one candidate at a time regardless of completion order.
	var (
		merged    []domain.CoverageItem
		breakdown domain.Breakdown
	)
	assembledAt := c.now()

collect:
	for done := 0; done < tasks; done++ {
		select {
		case res := <-results:
			for _, raw := range res.items {
				item, ok := assemble(raw, res.term, res.sourceName, assembledAt)
				if !ok {
					continue
				}
				if !filter.Accept(item.URL) {
					continue
				}
				merged = append(merged, item)
				breakdown.Add(item.Category)
			}
		case <-runCtx.Done():
			c.logger.Warn("global budget elapsed, abandoning in-flight sources",
				"completed", done, "tasks", tasks)
			break collect
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedDate > merged[j].PublishedDate
	})

	result := RunResult{
		Items:           merged,
		Count:           len(merged),
		Breakdown:       breakdown,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}

	c.logger.Info("aggregation run finished",
		"count", result.Count, "tasks", tasks, "elapsedMs", result.ExecutionTimeMs)

	c.recordRun(ctx, result)

	return result, nil
}

// loadPersistedURLs gathers every URL already persisted, best-effort: when the
// store or the archive is unreachable the run proceeds with whatever loaded,
// trading duplicate detection for availability.
func (c *Crawler) loadPersistedURLs(ctx context.Context) []string {
	var urls []string

	if c.store != nil {
		content, _, err := c.store.Get(ctx, MediaCollectionKey)
		if err != nil {
			c.logger.Warn("published collection unavailable, duplicate detection degraded", "error", err)
		} else {
			var items []domain.CoverageItem
			if err := json.Unmarshal(content, &items); err != nil {
				c.logger.Warn("published collection is not a coverage array, skipping", "error", err)
			} else {
				for _, item := range items {
					urls = append(urls, item.URL)
				}
			}
		}
	}

	if c.archive != nil {
		known, err := c.archive.KnownURLs(ctx)
		if err != nil {
			c.logger.Warn("ingestion archive unavailable, duplicate detection degraded", "error", err)
		} else {
			urls = append(urls, known...)
		}
	}

	return urls
}

// recordRun persists the run outcome to the optional adapters. Each failure is
// logged and swallowed; the run already succeeded.
func (c *Crawler) recordRun(ctx context.Context, result RunResult) {
	if c.archive != nil && len(result.Items) > 0 {
		if err := c.archive.SaveRun(ctx, result.Items); err != nil {
			c.logger.Warn("archive write failed", "error", err)
		}
	}

	if c.snapshot != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			err = c.snapshot.SaveLatest(ctx, payload)
		}
		if err != nil {
			c.logger.Warn("snapshot write failed", "error", err)
		}
	}

	if c.notifier != nil && len(result.Items) > 0 {
		if err := c.notifier.PublishDigest(ctx, buildDigest(result.Items)); err != nil {
			c.logger.Warn("digest notification failed", "error", err)
		}
	}
}

func buildDigest(items []domain.CoverageItem) string {
	digest := fmt.Sprintf("The media crawler found %d new item(s):\n\n", len(items))
	for i, item := range items {
		digest += fmt.Sprintf("%d. %s\n   Outlet: %s\n   Link: %s\n   Type: %s\n   Date: %s\n\n",
			i+1, item.Headline, item.Outlet, item.URL, item.Category, item.PublishedDate)
	}
	return digest
}

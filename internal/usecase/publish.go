package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
)

// ErrUnknownSubmissionType reports a submission tag outside the dispatch table.
var ErrUnknownSubmissionType = errors.New("unknown submission type")

// MediaCollectionKey is the persisted collection holding approved coverage
// items; the crawler also reads it to seed duplicate detection.
const MediaCollectionKey = "src/data/mediaArticles.json"

// collectionKeys is the closed dispatch table from submission type to persisted
// collection. Unrecognized tags are rejected at the boundary, never defaulted.
var collectionKeys = map[domain.SubmissionType]string{
	domain.SubmissionMemory:    "src/data/memories.json",
	domain.SubmissionGuestbook: "src/data/guestbook.json",
	domain.SubmissionMedia:     MediaCollectionKey,
}

// CollectionKey resolves a submission type to its target collection.
func CollectionKey(t domain.SubmissionType) (string, error) {
	key, ok := collectionKeys[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubmissionType, t)
	}
	return key, nil
}

// Publisher appends approved records to persisted collections under optimistic
// concurrency: the write carries the revision read in the same cycle, and the
// store rejects it if another writer got in between. The publisher never
// retries; the caller owns the re-read/re-append/re-write loop because the
// payload may need re-validation against the newer base state.
type Publisher struct {
	store  ports.ContentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher constructs the gateway.
func NewPublisher(store ports.ContentStore, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger, now: time.Now}
}

// Publish runs one read-append-write cycle for the given submission.
// It returns ErrUnknownSubmissionType before touching storage,
// ports.ErrRevisionConflict when the collection moved under the caller, and
// ports.ErrNotFound when the collection or the store credentials are missing.
func (p *Publisher) Publish(ctx context.Context, t domain.SubmissionType, record map[string]any) error {
	key, err := CollectionKey(t)
	if err != nil {
		return err
	}
	if p.store == nil {
		return fmt.Errorf("content store not configured: %w", ports.ErrNotFound)
	}
	if len(record) == 0 {
		return fmt.Errorf("empty submission payload")
	}

	content, revision, err := p.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read collection %s: %w", key, err)
	}

	var records []map[string]any
	if len(content) > 0 {
		if err := json.Unmarshal(content, &records); err != nil {
			return fmt.Errorf("decode collection %s: %w", key, err)
		}
	}

	now := p.now()
	stamped := make(map[string]any, len(record)+3)
	for k, v := range record {
		stamped[k] = v
	}
	stamped["id"] = domain.NewID(now)
	stamped["approved"] = true
	if _, ok := stamped["date"]; !ok {
		stamped["date"] = now.UTC().Format(dateFormat)
	}

	records = append(records, stamped)
	updated, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}

	message := fmt.Sprintf("Approve %s submission", t)
	if _, err := p.store.Put(ctx, key, updated, revision, message); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}

	p.logger.Info("submission published", "type", string(t), "collection", key)
	return nil
}

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediawatch/internal/ports"
)

const (
	latestRunKey = "mediawatch:latest_run"
	latestRunTTL = 48 * time.Hour
)

// RedisSnapshot caches the latest aggregation result so the admin page can
// show the most recent discovery set without triggering a new crawl.
type RedisSnapshot struct {
	rdb *redis.Client
}

var _ ports.SnapshotStore = (*RedisSnapshot)(nil)

// NewRedisSnapshot connects to the given Redis address.
func NewRedisSnapshot(addr string) *RedisSnapshot {
	return &RedisSnapshot{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// SaveLatest overwrites the cached run payload.
func (s *RedisSnapshot) SaveLatest(ctx context.Context, payload []byte) error {
	if err := s.rdb.Set(ctx, latestRunKey, payload, latestRunTTL).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Latest returns the cached run payload, or ports.ErrNotFound when no run has
// been cached yet or the entry expired.
func (s *RedisSnapshot) Latest(ctx context.Context) ([]byte, error) {
	payload, err := s.rdb.Get(ctx, latestRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return payload, nil
}

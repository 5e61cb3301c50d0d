// Package cache keeps the last normalized snapshot of each synced match in
// Redis, so repeated lookups of a finished match do not hit the provider.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ernie/courtside/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL applies when the writer is built with a zero TTL
const DefaultSnapshotTTL = 10 * time.Minute

// ErrMiss is returned when no snapshot is cached for a match
var ErrMiss = errors.New("snapshot not cached")

// SnapshotKey returns the Redis key holding a match snapshot
func SnapshotKey(matchID int64) string {
	return fmt.Sprintf("match:%d:snapshot", matchID)
}

// RedisWriter stores and reads normalized match snapshots
type RedisWriter struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisWriter creates a new Redis writer
func NewRedisWriter(client *redis.Client, ttl time.Duration) *RedisWriter {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisWriter{
		client: client,
		ttl:    ttl,
	}
}

// Ping checks the connection
func (w *RedisWriter) Ping(ctx context.Context) error {
	return w.client.Ping(ctx).Err()
}

// WriteSnapshot stores the normalized match data under its match id
func (w *RedisWriter) WriteSnapshot(ctx context.Context, md domain.MatchData) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return w.client.Set(ctx, SnapshotKey(md.MatchID), data, w.ttl).Err()
}

// ReadSnapshot retrieves a cached snapshot, or ErrMiss
func (w *RedisWriter) ReadSnapshot(ctx context.Context, matchID int64) (domain.MatchData, error) {
	data, err := w.client.Get(ctx, SnapshotKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MatchData{}, ErrMiss
	}
	if err != nil {
		return domain.MatchData{}, fmt.Errorf("reading snapshot %d: %w", matchID, err)
	}

	var md domain.MatchData
	if err := json.Unmarshal(data, &md); err != nil {
		return domain.MatchData{}, fmt.Errorf("unmarshaling snapshot %d: %w", matchID, err)
	}
	return md, nil
}

// Close closes the underlying client
func (w *RedisWriter) Close() error {
	return w.client.Close()
}

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ernie/courtside/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKey(t *testing.T) {
	require.Equal(t, "match:400302960:snapshot", SnapshotKey(400302960))
}

func TestNewRedisWriterDefaultTTL(t *testing.T) {
	w := NewRedisWriter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	t.Cleanup(func() { _ = w.Close() })
	require.Equal(t, DefaultSnapshotTTL, w.ttl)
}

// getTestRedisClient connects to REDIS_TEST_URL; the round trip test is
// skipped when no server is configured.
func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_TEST_PASSWORD"),
		DB:       1,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	return client
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := getTestRedisClient(t)
	w := NewRedisWriter(client, time.Minute)
	t.Cleanup(func() {
		client.Del(ctx, SnapshotKey(987654321))
		_ = w.Close()
	})

	_, err := w.ReadSnapshot(ctx, 987654321)
	require.ErrorIs(t, err, ErrMiss)

	md := domain.MatchData{
		MatchID:   987654321,
		SportType: 1,
		Home:      domain.TeamData{Name: "宏疆队", Scores: [4]int{26, 34, 30, 30}, Players: []string{"刘竞"}, Total: 120},
		Away:      domain.TeamData{Name: "沐骁队", Scores: [4]int{30, 25, 31, 30}, Players: []string{}, Total: 116},
	}
	require.NoError(t, w.WriteSnapshot(ctx, md))

	got, err := w.ReadSnapshot(ctx, 987654321)
	require.NoError(t, err)
	require.Equal(t, md, got)

	ttl, err := client.TTL(ctx, SnapshotKey(987654321)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

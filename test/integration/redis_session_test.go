package integration

import (
	"context"
	"os"
	"testing"

	"jenny-assistant-be/internal/repository/cache"
	"jenny-assistant-be/internal/repository/memory"
	"jenny-assistant-be/pkg/assistant/session"
	"jenny-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionSharedBetweenInstances(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	ctx := context.Background()
	prefix := "jenny:it:" + uuid.NewString() + ":"
	durable := cache.NewRedisSessionCache(rdb)

	first := session.NewStore(memory.NewSessionRepository(), durable, session.Options{KeyPrefix: prefix}, nil)
	second := session.NewStore(memory.NewSessionRepository(), durable, session.Options{KeyPrefix: prefix}, nil)

	require.NoError(t, first.AppendHistory(ctx, "u1", store.HistoryEntry{Role: store.RoleUser, Content: "hello"}))
	require.NoError(t, first.SetPendingTask(ctx, "u1", &store.PendingTask{Title: "Call mom"}))

	snap, err := second.GetContext(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	require.NotNil(t, snap.PendingTask)
	assert.Equal(t, "Call mom", snap.PendingTask.Title)
	assert.False(t, second.MemoryOnly())

	ttl, err := rdb.TTL(ctx, prefix+"u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl.Seconds(), 0.0)

	require.NoError(t, second.Clear(ctx, "u1"))
	exists, err := rdb.Exists(ctx, prefix+"u1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

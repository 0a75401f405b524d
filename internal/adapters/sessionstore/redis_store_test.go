package sessionstore_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/adapters/sessionstore"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/repositories"
	redisclient "github.com/zatekoja/medassist/internal/infrastructure/clients/redis"
	"github.com/zatekoja/medassist/pkg/config"
)

// newRedisStore connects to the Redis named by TEST_REDIS_HOST and skips the
// test when it is unset.
func newRedisStore(t *testing.T, ttl time.Duration, maxEntries int) *sessionstore.RedisStore {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if port == 0 {
		port = 6379
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := redisclient.NewClient(ctx, &config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "medassist:test:" + uuid.NewString()
	t.Cleanup(func() {
		keys, _ := client.Client().Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			client.Client().Del(context.Background(), keys...)
		}
	})
	return sessionstore.NewRedisStore(client, prefix, ttl, maxEntries)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Hour, 10)

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := entities.NewChatSession("s1", now)
	session.Append(entities.ChatMessage{Role: entities.RoleUser, Message: "hello", Timestamp: now, Language: "en"})
	require.NoError(t, store.Upsert(ctx, session))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.ConversationHistory, 1)
	assert.Equal(t, "hello", loaded.ConversationHistory[0].Message)

	deleted, err := store.Delete(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestRedisStore_ExpiryAndTrim(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t, time.Hour, 2)

	now := time.Now()
	require.NoError(t, store.Upsert(ctx, entities.NewChatSession("a", now.Add(-3*time.Hour))))
	require.NoError(t, store.Upsert(ctx, entities.NewChatSession("b", now.Add(-time.Minute))))

	expired, err := store.ListExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, expired)

	require.NoError(t, store.Upsert(ctx, entities.NewChatSession("c", now)))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
	_, err = store.Get(ctx, "b")
	assert.NoError(t, err)
}

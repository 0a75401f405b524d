package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/repositories"
	redisclient "github.com/zatekoja/medassist/internal/infrastructure/clients/redis"
)

// RedisStore shares sessions between instances. Each session is a JSON value
// under {prefix}:{id} expiring after the TTL, and the sorted set
// {prefix}:index scores ids by last activity for expiry listing and trimming.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(client *redisclient.Client, prefix string, ttl time.Duration, maxEntries int) *RedisStore {
	return &RedisStore{
		client:     client.Client(),
		prefix:     prefix,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

var _ repositories.SessionRepository = (*RedisStore)(nil)

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}

// Get loads a session
func (s *RedisStore) Get(ctx context.Context, id string) (*entities.ChatSession, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repositories.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session entities.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

// Upsert writes a session and refreshes its TTL and index score
func (s *RedisStore) Upsert(ctx context.Context, session *entities.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(session.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(session.LastActive.UnixMilli()),
			Member: session.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return s.trim(ctx)
}

// trim drops the least recently active sessions beyond maxEntries
func (s *RedisStore) trim(ctx context.Context) error {
	if s.maxEntries <= 0 {
		return nil
	}
	count, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	excess := count - int64(s.maxEntries)
	if excess <= 0 {
		return nil
	}

	popped, err := s.client.ZPopMin(ctx, s.indexKey(), excess).Result()
	if err != nil {
		return fmt.Errorf("failed to trim sessions: %w", err)
	}
	keys := make([]string, 0, len(popped))
	for _, z := range popped {
		if id, ok := z.Member.(string); ok {
			keys = append(keys, s.key(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete trimmed sessions: %w", err)
	}
	return nil
}

// Delete removes a session and its index entry
func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return del.Val() > 0, nil
}

// ListExpired returns ids whose last activity is older than the TTL. The
// session keys have usually expired already; the ids linger in the index
// until deleted.
func (s *RedisStore) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	if s.ttl <= 0 {
		return nil, nil
	}
	cutoff := now.Add(-s.ttl).UnixMilli()
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	return ids, nil
}

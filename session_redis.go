package secrets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisSessionPrefix = "secrets:sess"

// RedisSessionStore keeps session bindings in Redis so sessions survive
// process restarts and can be shared between instances. Expiry rides on the
// key TTL.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

var _ SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = defaultRedisSessionPrefix
	}

	return &RedisSessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisSessionStore) Put(ctx context.Context, tokenHash string, accountID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(tokenHash), accountID.String(), ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, err
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}

	return id, nil
}

func (s *RedisSessionStore) Del(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, s.key(tokenHash)).Err()
}

func (s *RedisSessionStore) key(tokenHash string) string {
	return s.prefix + ":" + tokenHash
}

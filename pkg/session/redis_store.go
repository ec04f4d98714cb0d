package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps credentials in Redis so that several worker processes,
// each with its own client instance, share one login.
type RedisStore struct {
	redis *redis.Client
	key   StoreKey
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps the session
// until it is overwritten or deleted.
func NewRedisStore(redisClient *redis.Client, key StoreKey, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		key:   key,
		ttl:   ttl,
	}
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (creds Credentials, err error) {
	defer func() { observe("redis", "load", err) }()

	data, err := s.redis.Get(ctx, s.key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeCredentials(data)
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, creds Credentials) (err error) {
	defer func() { observe("redis", "save", err) }()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := s.redis.Set(ctx, s.key.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the stored session.
func (s *RedisStore) Delete(ctx context.Context) (err error) {
	defer func() { observe("redis", "delete", err) }()

	if err := s.redis.Del(ctx, s.key.String()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/config"
)

const keyPrefix = "storefront:session:"

// RedisStore keeps sessions in Redis with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the configured Redis and checks it answers
func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.Redis.SessionTTL), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads the session and refreshes its TTL
func (r *RedisStore) Get(ctx context.Context, terminalID string) (*Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+terminalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if r.ttl > 0 {
		if err := r.client.Expire(ctx, keyPrefix+terminalID, r.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to refresh session ttl: %w", err)
		}
	}

	return &s, nil
}

// Save stores the session, replacing any previous one
func (r *RedisStore) Save(ctx context.Context, terminalID string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+terminalID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete signs the terminal out
func (r *RedisStore) Delete(ctx context.Context, terminalID string) error {
	if err := r.client.Del(ctx, keyPrefix+terminalID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close releases the client
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping checks the server is reachable
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

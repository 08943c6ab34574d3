package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/billsplit/internal/calculator"
)

var _ Store = (*RedisStore)(nil)

const keyPrefix = "billsplit:draft:"

// RedisStore keeps drafts as JSON strings with a Redis expiry, so drafts
// survive restarts and are shared between server instances.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func draftKey(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (calculator.State, error) {
	var st calculator.State
	data, err := r.client.Get(ctx, draftKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return st, ErrNotFound
	}
	if err != nil {
		return st, fmt.Errorf("failed to get draft %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return st, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}
	return st, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, st calculator.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", id, err)
	}
	if err := r.client.Set(ctx, draftKey(id), string(data), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", id, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}

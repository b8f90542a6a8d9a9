package alias

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redis key for the shared alias hash.
const redisAliasKey = "orgmatch:aliases"

// RedisStore keeps the alias map in a Redis hash for deployments that
// already run Redis. Like the file backend it is read once at process start.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed alias store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load reads the full alias hash into an in-memory Store.
func (r *RedisStore) Load(ctx context.Context) (*Store, error) {
	raw, err := r.client.HGetAll(ctx, redisAliasKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading aliases from redis: %w", err)
	}
	return NewStoreFrom(raw), nil
}

// Set records or corrects an override.
func (r *RedisStore) Set(ctx context.Context, external, canonical string) error {
	if err := r.client.HSet(ctx, redisAliasKey, Normalize(external), Normalize(canonical)).Err(); err != nil {
		return fmt.Errorf("storing alias in redis: %w", err)
	}
	return nil
}

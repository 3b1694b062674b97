package basket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis-backed session store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	BasketTTL time.Duration
}

// RedisStore persists one basket mapping per session key in redis. The TTL
// bounds how long an abandoned session entry lingers; the authoritative
// ticket holds expire on their own regardless.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(rdb, cfg.BasketTTL), nil
}

// NewRedisStoreWithClient wraps an existing client; used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func basketKey(sessionID string) string {
	return "basket:" + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (map[string]Item, error) {
	payload, err := s.client.Get(ctx, basketKey(sessionID)).Result()
	if err == redis.Nil {
		return map[string]Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read basket: %w", err)
	}

	items := make(map[string]Item)
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to decode basket: %w", err)
	}
	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, items map[string]Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode basket: %w", err)
	}

	if err := s.client.Set(ctx, basketKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write basket: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, basketKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete basket: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

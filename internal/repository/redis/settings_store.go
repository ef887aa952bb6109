package redis

import (
	"context"
	"fmt"
	"time"

	"redirect-analytics/internal/metrics"
	"redirect-analytics/internal/repository"

	"github.com/redis/go-redis/v9"
)

// SettingsStore keeps settings in a single Redis hash.
// It is the persistence backend when SETTINGS_BACKEND=redis.
type SettingsStore struct {
	client *redis.Client
	key    string
}

var _ repository.SettingsRepository = (*SettingsStore)(nil)

// NewSettingsStore creates a settings store backed by the hash at key
func NewSettingsStore(client *redis.Client, key string) *SettingsStore {
	return &SettingsStore{
		client: client,
		key:    key,
	}
}

// Load reads the requested fields of the settings hash
func (s *SettingsStore) Load(ctx context.Context, keys []string) (map[string]string, error) {
	defer observe("load")()

	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	result, err := s.client.HMGet(ctx, s.key, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget error: %w", err)
	}

	// HMGET returns nil for fields that are not set
	for i, v := range result {
		if str, ok := v.(string); ok {
			values[keys[i]] = str
		}
	}

	return values, nil
}

// Save writes all fields in one HSET
func (s *SettingsStore) Save(ctx context.Context, values map[string]string) error {
	defer observe("save")()

	if len(values) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}

	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("redis hset error: %w", err)
	}

	return nil
}

func observe(operation string) func() {
	start := time.Now()
	return func() {
		metrics.SettingsStoreDuration.WithLabelValues("redis", operation).Observe(time.Since(start).Seconds())
	}
}

// InitRedis creates a new Redis client
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

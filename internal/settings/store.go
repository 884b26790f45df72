package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/smartclass/internal/protocol"
)

var (
	ErrNotFound = &StoreError{"settings not found"}
)

// StoreError represents a settings persistence failure
type StoreError struct {
	msg string
}

func (e *StoreError) Error() string {
	return e.msg
}

// Store persists the settings saved from the dashboard form
type Store interface {
	Load(ctx context.Context) (protocol.Settings, error)
	Save(ctx context.Context, s protocol.Settings) error
}

// MemoryStore keeps settings in process memory. Used when Redis is disabled.
type MemoryStore struct {
	mu       sync.RWMutex
	settings *protocol.Settings
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (protocol.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return protocol.Settings{}, ErrNotFound
	}
	return *m.settings, nil
}

func (m *MemoryStore) Save(ctx context.Context, s protocol.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &s
	return nil
}

// RedisStore keeps settings as one JSON document per device
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a store under settings:<deviceID>
func NewRedisStore(redisClient *redis.Client, deviceID string) *RedisStore {
	return &RedisStore{
		redis: redisClient,
		key:   Key(deviceID),
	}
}

// Key returns the Redis key holding a device's settings
func Key(deviceID string) string {
	return fmt.Sprintf("settings:%s", deviceID)
}

func (r *RedisStore) Load(ctx context.Context) (protocol.Settings, error) {
	data, err := r.redis.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return protocol.Settings{}, ErrNotFound
	}
	if err != nil {
		return protocol.Settings{}, fmt.Errorf("failed to get settings from Redis: %w", err)
	}

	var s protocol.Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return protocol.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s protocol.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// no expiry, settings survive until overwritten
	if err := r.redis.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set settings in Redis: %w", err)
	}
	return nil
}

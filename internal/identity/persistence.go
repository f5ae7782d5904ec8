package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/wastewatch/authclient/internal/logger"
)

// keeps the session for the life of the process only
type MemoryPersistence struct {
	mu   sync.Mutex
	user *PersistedUser
}

// returns an empty in-memory persistence
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) Load(_ context.Context) (*PersistedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil, nil
	}

	user := *m.user
	return &user, nil
}

func (m *MemoryPersistence) Save(_ context.Context, user PersistedUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = &user
	return nil
}

func (m *MemoryPersistence) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = nil
	return nil
}

// stores the session in Redis so it survives restarts and can be shared
// between processes using the same API key
type RedisPersistence struct {
	client *redis.Client
	key    string
}

// key layout mirrors the browser SDK's local storage key
const keyAuthUser = "wastewatch:authUser:%s:[DEFAULT]"

// wraps an existing Redis client
func NewRedisPersistence(client *redis.Client, apiKey string) *RedisPersistence {
	return &RedisPersistence{
		client: client,
		key:    fmt.Sprintf(keyAuthUser, apiKey),
	}
}

// connects to redisURL and returns a persistence bound to apiKey
func OpenRedisPersistence(ctx context.Context, redisURL, apiKey string) (*RedisPersistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on connect failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Debug("connected to redis for session persistence")

	return NewRedisPersistence(client, apiKey), nil
}

// closes the Redis connection
func (r *RedisPersistence) Close() error {
	return r.client.Close()
}

func (r *RedisPersistence) Load(ctx context.Context) (*PersistedUser, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var user PersistedUser
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal persisted session: %w", err)
	}

	return &user, nil
}

func (r *RedisPersistence) Save(ctx context.Context, user PersistedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// no TTL: the refresh token stays valid until revoked
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}

	return nil
}

func (r *RedisPersistence) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}

	return nil
}

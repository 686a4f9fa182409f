package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionTracker remembers which lead a conversation already produced.
type SessionTracker interface {
	// Lookup returns the lead recorded for the conversation, if any.
	Lookup(ctx context.Context, conversationID uuid.UUID) (uuid.UUID, bool, error)
	// Remember records leadID for the conversation. An existing entry wins.
	Remember(ctx context.Context, conversationID, leadID uuid.UUID) error
}

// MemoryTracker keeps entries for the lifetime of the process.
type MemoryTracker struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]uuid.UUID
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{entries: make(map[uuid.UUID]uuid.UUID)}
}

func (m *MemoryTracker) Lookup(_ context.Context, conversationID uuid.UUID) (uuid.UUID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	leadID, ok := m.entries[conversationID]
	return leadID, ok, nil
}

func (m *MemoryTracker) Remember(_ context.Context, conversationID, leadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[conversationID]; !exists {
		m.entries[conversationID] = leadID
	}
	return nil
}

const (
	redisKeyPrefix  = "intake:conversation-lead:"
	DefaultRedisTTL = 30 * 24 * time.Hour
)

// RedisTracker shares entries between API instances. Entries expire after
// ttl; a conversation idle for that long is treated as new.
type RedisTracker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisTracker(client redis.UniversalClient, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisTracker{client: client, ttl: ttl}
}

func (r *RedisTracker) Lookup(ctx context.Context, conversationID uuid.UUID) (uuid.UUID, bool, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+conversationID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	leadID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, err
	}
	return leadID, true, nil
}

func (r *RedisTracker) Remember(ctx context.Context, conversationID, leadID uuid.UUID) error {
	return r.client.SetNX(ctx, redisKeyPrefix+conversationID.String(), leadID.String(), r.ttl).Err()
}

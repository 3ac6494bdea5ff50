// Package dedup drops provider redeliveries of the same inbound message.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

// Deduper reports whether a provider message id is seen for the first time.
// An empty id is always treated as first seen. Forget releases a mark so a
// redelivery of a message that failed to process is accepted again.
type Deduper interface {
	FirstSeen(ctx context.Context, channel, messageID string) (bool, error)
	Forget(ctx context.Context, channel, messageID string) error
}

func key(channel, messageID string) string {
	return "inbound:" + channel + ":" + messageID
}

// Redis marks ids with SETNX so every API replica shares one view.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) FirstSeen(ctx context.Context, channel, messageID string) (bool, error) {
	if messageID == "" {
		return true, nil
	}
	return r.client.SetNX(ctx, key(channel, messageID), 1, r.ttl).Result()
}

func (r *Redis) Forget(ctx context.Context, channel, messageID string) error {
	if messageID == "" {
		return nil
	}
	return r.client.Del(ctx, key(channel, messageID)).Err()
}

// Memory is a single-process Deduper used when Redis is not configured.
type Memory struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (m *Memory) FirstSeen(_ context.Context, channel, messageID string) (bool, error) {
	if messageID == "" {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := key(channel, messageID)
	if exp, ok := m.seen[k]; ok && now.Before(exp) {
		return false, nil
	}
	m.seen[k] = now.Add(m.ttl)

	if len(m.seen) > 10000 {
		for id, exp := range m.seen {
			if !now.Before(exp) {
				delete(m.seen, id)
			}
		}
	}
	return true, nil
}

func (m *Memory) Forget(_ context.Context, channel, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key(channel, messageID))
	return nil
}

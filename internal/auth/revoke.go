package auth

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Revoker remembers signed-out sessions until their tokens could no longer
// be valid anyway.
type Revoker interface {
	Revoke(ctx context.Context, sid string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sid string) (bool, error)
}

// MemoryRevoker is used when no Redis is configured. Revocations do not
// survive a restart.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, sid string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, until := range m.revoked {
		if now.After(until) {
			delete(m.revoked, k)
		}
	}
	m.revoked[sid] = now.Add(ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[sid]
	return ok && m.now().Before(until), nil
}

const revokedPrefix = "auth:revoked:"

type RedisRevoker struct {
	rdb *goredis.Client
}

func NewRedisRevoker(rdb *goredis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb}
}

func (r *RedisRevoker) Revoke(ctx context.Context, sid string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedPrefix+sid, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, sid string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedPrefix+sid).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Package rdx holds the Redis-backed session state: revoked tokens and
// issued CSRF tokens. Memory variants back the in-memory storage driver.
package rdx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"foodgram/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	revokedPrefix = "foodgram:revoked:"
	csrfPrefix    = "foodgram:csrf:"
)

// Connect opens a client and pings the server.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Denylist records token ids revoked before their expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// CSRFStore issues and checks CSRF tokens.
type CSRFStore interface {
	Issue(ctx context.Context) (string, error)
	Valid(ctx context.Context, token string) (bool, error)
}

type RedisDenylist struct {
	conn *redis.Client
}

func NewRedisDenylist(conn *redis.Client) *RedisDenylist {
	return &RedisDenylist{conn: conn}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.conn.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.conn.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type RedisCSRF struct {
	conn *redis.Client
	ttl  time.Duration
}

func NewRedisCSRF(conn *redis.Client, ttl time.Duration) *RedisCSRF {
	return &RedisCSRF{conn: conn, ttl: ttl}
}

func (c *RedisCSRF) Issue(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := c.conn.Set(ctx, csrfPrefix+token, 1, c.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (c *RedisCSRF) Valid(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	err := c.conn.Get(ctx, csrfPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// expiring is a TTL set shared by the memory variants.
type expiring struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func newExpiring() *expiring {
	return &expiring{items: make(map[string]time.Time), now: time.Now}
}

func (e *expiring) add(key string, ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items[key] = e.now().Add(ttl)
}

func (e *expiring) has(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	exp, ok := e.items[key]
	if !ok {
		return false
	}
	if !e.now().Before(exp) {
		delete(e.items, key)
		return false
	}
	return true
}

type MemoryDenylist struct {
	set *expiring
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{set: newExpiring()}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl > 0 {
		d.set.add(tokenID, ttl)
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return d.set.has(tokenID), nil
}

type MemoryCSRF struct {
	set *expiring
	ttl time.Duration
}

func NewMemoryCSRF(ttl time.Duration) *MemoryCSRF {
	return &MemoryCSRF{set: newExpiring(), ttl: ttl}
}

func (c *MemoryCSRF) Issue(context.Context) (string, error) {
	token := uuid.NewString()
	c.set.add(token, c.ttl)
	return token, nil
}

func (c *MemoryCSRF) Valid(_ context.Context, token string) (bool, error) {
	return token != "" && c.set.has(token), nil
}

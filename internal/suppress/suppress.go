// Package suppress provides a short-lived de-duplication window, used to
// keep double-fired page views from double-counting.
package suppress

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Suppressor reports whether a key is the first occurrence within the
// configured window. The window is best-effort; losing it only affects
// view counts, never money.
type Suppressor interface {
	FirstInWindow(ctx context.Context, key string) (bool, error)
}

type redisSuppressor struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSuppressor(client *redis.Client, ttl time.Duration) Suppressor {
	return &redisSuppressor{
		client: client,
		ttl:    ttl,
	}
}

func (s *redisSuppressor) FirstInWindow(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, "view:"+key, 1, s.ttl).Result()
}

type memorySuppressor struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemorySuppressor is the single-process fallback used when no redis
// address is configured, and in tests.
func NewMemorySuppressor(ttl time.Duration) Suppressor {
	return &memorySuppressor{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *memorySuppressor) FirstInWindow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}

	s.seen[key] = now.Add(s.ttl)
	s.sweep(now)
	return true, nil
}

func (s *memorySuppressor) sweep(now time.Time) {
	if len(s.seen) < 4096 {
		return
	}
	for key, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, key)
		}
	}
}

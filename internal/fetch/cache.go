package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "doc:"

// fillTimeout bounds a shared upstream fetch once it is detached from the
// caller that started it.
const fillTimeout = 2 * time.Minute

// Store persists fetched payloads by key.
type Store interface {
	Get(ctx context.Context, key string) (*Payload, bool, error)
	Set(ctx context.Context, key string, p *Payload) error
}

// MemoryStore is a process-local Store with a fixed TTL.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload *Payload
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Payload, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, p *Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{payload: p, expires: s.now().Add(s.ttl)}
	return nil
}

// RedisStore keeps payloads in Redis as JSON.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Payload, bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached payload: %w", err)
	}
	return &p, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Cache wraps a Fetcher with a Store. Concurrent misses for the same URL
// share one upstream fetch.
type Cache struct {
	next    Fetcher
	store   Store
	group   singleflight.Group
	log     *slog.Logger
	observe func(hit bool)
	timeout time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache returns a caching Fetcher. observe, if non-nil, is called on
// every lookup.
func NewCache(next Fetcher, store Store, log *slog.Logger, observe func(hit bool)) *Cache {
	return &Cache{
		next:    next,
		store:   store,
		log:     log.With("component", "fetch-cache"),
		observe: observe,
		timeout: fillTimeout,
	}
}

func (c *Cache) Fetch(ctx context.Context, url string) (*Payload, error) {
	p, _, err := c.GetOrFetch(ctx, url)
	return p, err
}

// GetOrFetch returns the cached payload for url, fetching it on a miss. The
// boolean reports a cache hit.
func (c *Cache) GetOrFetch(ctx context.Context, url string) (*Payload, bool, error) {
	key := buildKey(url)
	if p, ok := c.lookup(ctx, key); ok {
		c.record(true)
		return p, true, nil
	}
	c.record(false)

	p, err := c.fill(ctx, key, key, url, true)
	if err != nil {
		return nil, false, err
	}
	return p, false, nil
}

// Refresh fetches url from upstream regardless of what is cached and
// replaces the stored payload. Concurrent refreshes of one URL share a fetch.
func (c *Cache) Refresh(ctx context.Context, url string) (*Payload, error) {
	key := buildKey(url)
	return c.fill(ctx, "refresh:"+key, key, url, false)
}

// fill runs one upstream fetch per flight. The shared fetch is detached
// from ctx so a caller that goes away does not fail the others waiting on it.
func (c *Cache) fill(ctx context.Context, flight, key, url string, recheck bool) (*Payload, error) {
	ch := c.group.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		if recheck {
			if p, ok := c.lookup(fctx, key); ok {
				return p, nil
			}
		}
		p, err := c.next.Fetch(fctx, url)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(fctx, key, p); err != nil {
			c.log.Error("cache set failed", "key", key, "error", err)
		}
		return p, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Payload), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns lookup counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) lookup(ctx context.Context, key string) (*Payload, bool) {
	p, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Error("cache get failed", "key", key, "error", err)
		return nil, false
	}
	return p, ok
}

func (c *Cache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observe != nil {
		c.observe(hit)
	}
}

func buildKey(url string) string {
	url, _, _ = strings.Cut(url, "#")
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

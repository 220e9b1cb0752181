// Package cache provides a Redis-backed read-through cache in front of the
// market data provider. Candle histories are the expensive upstream call;
// quotes and alt-data snapshots pass through uncached.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/market"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
)

// candleEntry is the stored cache record with metadata.
type candleEntry struct {
	Candles  *models.Candles `json:"candles"`
	CachedAt time.Time       `json:"cached_at"`
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() (hits, misses, sets int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Hits, s.Misses, s.Sets
}

// CachingProvider decorates a market.Provider with Redis candle caching.
// Every Redis failure degrades to a direct upstream fetch rather than an
// error: the cache is an optimization, never a dependency.
type CachingProvider struct {
	inner  market.Provider
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	stats  *Stats
	prefix string
}

// NewCachingProvider wraps a provider with a Redis candle cache.
func NewCachingProvider(inner market.Provider, redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachingProvider {
	return &CachingProvider{
		inner:  inner,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
		stats:  &Stats{},
		prefix: "candles:",
	}
}

// Stats exposes the cache counters.
func (c *CachingProvider) Stats() *Stats {
	return c.stats
}

// Candles serves a candle history from Redis when present, otherwise
// fetches upstream and populates the cache.
func (c *CachingProvider) Candles(ctx context.Context, symbol string, days int) (*models.Candles, error) {
	key := fmt.Sprintf("%s%s:%d", c.prefix, strings.ToUpper(symbol), days)

	data, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var entry candleEntry
		if jsonErr := json.Unmarshal([]byte(data), &entry); jsonErr == nil && entry.Candles != nil {
			c.stats.mu.Lock()
			c.stats.Hits++
			c.stats.mu.Unlock()
			return entry.Candles, nil
		}
		c.logger.WithField("key", key).Warn("Discarding undecodable cache entry")
	} else if err != redis.Nil {
		c.logger.WithField("key", key).WithError(err).Warn("Candle cache read failed")
	}

	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()

	candles, err := c.inner.Candles(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, candles)
	return candles, nil
}

func (c *CachingProvider) store(ctx context.Context, key string, candles *models.Candles) {
	entry := candleEntry{Candles: candles, CachedAt: time.Now().UTC()}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("Failed to serialize candle cache entry")
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("Candle cache write failed")
		return
	}
	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Quote passes through to the upstream provider.
func (c *CachingProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return c.inner.Quote(ctx, symbol)
}

// RecommendationTrends passes through to the upstream provider.
func (c *CachingProvider) RecommendationTrends(ctx context.Context, symbol string) (*models.RecommendationTrends, error) {
	return c.inner.RecommendationTrends(ctx, symbol)
}

// NewsSentiment passes through to the upstream provider.
func (c *CachingProvider) NewsSentiment(ctx context.Context, symbol string) (*models.NewsSentiment, error) {
	return c.inner.NewsSentiment(ctx, symbol)
}

// EarningsCalendar passes through to the upstream provider.
func (c *CachingProvider) EarningsCalendar(ctx context.Context, symbol string) (*models.EarningsCalendar, error) {
	return c.inner.EarningsCalendar(ctx, symbol)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
)

// countingProvider records how often each upstream method is hit.
type countingProvider struct {
	candleCalls int
	candles     *models.Candles
	err         error
}

func (p *countingProvider) Quote(_ context.Context, _ string) (*models.Quote, error) {
	return nil, errors.New("not stubbed")
}

func (p *countingProvider) Candles(_ context.Context, _ string, _ int) (*models.Candles, error) {
	p.candleCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.candles, nil
}

func (p *countingProvider) RecommendationTrends(_ context.Context, _ string) (*models.RecommendationTrends, error) {
	return nil, errors.New("not stubbed")
}

func (p *countingProvider) NewsSentiment(_ context.Context, _ string) (*models.NewsSentiment, error) {
	return nil, errors.New("not stubbed")
}

func (p *countingProvider) EarningsCalendar(_ context.Context, _ string) (*models.EarningsCalendar, error) {
	return nil, errors.New("not stubbed")
}

func testCandles(symbol string) *models.Candles {
	return &models.Candles{
		Symbol: symbol,
		T:      []int64{1546387200, 1546473600},
		O:      []float64{100, 101},
		H:      []float64{102, 103},
		L:      []float64{99, 100},
		C:      []float64{101, 102},
		V:      []float64{1000, 1100},
	}
}

func newTestCache(t *testing.T, inner *countingProvider, ttl time.Duration) (*CachingProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewCachingProvider(inner, client, ttl, logger), mr
}

func TestCandlesReadThrough(t *testing.T) {
	inner := &countingProvider{candles: testCandles("AAPL")}
	cache, _ := newTestCache(t, inner, time.Minute)
	ctx := context.Background()

	first, err := cache.Candles(ctx, "aapl", 260)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.candleCalls)

	second, err := cache.Candles(ctx, "AAPL", 260)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.candleCalls, "second read must be served from cache")
	assert.Equal(t, first.C, second.C)

	hits, misses, sets := cache.Stats().Snapshot()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(1), sets)
}

func TestCandlesDistinctWindowsCacheSeparately(t *testing.T) {
	inner := &countingProvider{candles: testCandles("AAPL")}
	cache, _ := newTestCache(t, inner, time.Minute)
	ctx := context.Background()

	_, err := cache.Candles(ctx, "AAPL", 260)
	require.NoError(t, err)
	_, err = cache.Candles(ctx, "AAPL", 1500)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.candleCalls)
}

func TestCandlesExpiryRefetches(t *testing.T) {
	inner := &countingProvider{candles: testCandles("AAPL")}
	cache, mr := newTestCache(t, inner, time.Minute)
	ctx := context.Background()

	_, err := cache.Candles(ctx, "AAPL", 260)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Candles(ctx, "AAPL", 260)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.candleCalls)
}

func TestCandlesRedisDownFallsThrough(t *testing.T) {
	inner := &countingProvider{candles: testCandles("AAPL")}
	cache, mr := newTestCache(t, inner, time.Minute)
	mr.Close()

	candles, err := cache.Candles(context.Background(), "AAPL", 260)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", candles.Symbol)
	assert.Equal(t, 1, inner.candleCalls)
}

func TestCandlesUpstreamErrorPropagates(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	cache, _ := newTestCache(t, inner, time.Minute)

	_, err := cache.Candles(context.Background(), "AAPL", 260)
	require.Error(t, err)
}

func TestCorruptEntryIsIgnored(t *testing.T) {
	inner := &countingProvider{candles: testCandles("AAPL")}
	cache, mr := newTestCache(t, inner, time.Minute)

	require.NoError(t, mr.Set("candles:AAPL:260", "{not json"))

	candles, err := cache.Candles(context.Background(), "AAPL", 260)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", candles.Symbol)
	assert.Equal(t, 1, inner.candleCalls)
}
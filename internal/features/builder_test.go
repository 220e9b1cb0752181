package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

type builderStub struct {
	candles    *models.Candles
	candlesErr error
	earnings   *models.EarningsCalendar
}

func (s *builderStub) Quote(context.Context, string) (*models.Quote, error) {
	return nil, errors.New("not stubbed")
}

func (s *builderStub) Candles(context.Context, string, int) (*models.Candles, error) {
	return s.candles, s.candlesErr
}

func (s *builderStub) RecommendationTrends(context.Context, string) (*models.RecommendationTrends, error) {
	return &models.RecommendationTrends{Buy: 5}, nil
}

func (s *builderStub) NewsSentiment(context.Context, string) (*models.NewsSentiment, error) {
	return nil, errors.New("not stubbed")
}

func (s *builderStub) EarningsCalendar(context.Context, string) (*models.EarningsCalendar, error) {
	if s.earnings == nil {
		return nil, errors.New("not stubbed")
	}
	return s.earnings, nil
}

func flatCandles(n int) *models.Candles {
	base := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC).Unix()
	c := &models.Candles{
		Symbol: "AAPL",
		T:      make([]int64, n),
		O:      make([]float64, n),
		H:      make([]float64, n),
		L:      make([]float64, n),
		C:      make([]float64, n),
		V:      make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c.T[i] = base + int64(i)*86400
		c.O[i], c.H[i], c.L[i], c.C[i] = 100, 100, 100, 100
		c.V[i] = 1000
	}
	return c
}

func quietBuilder(p *builderStub) *Builder {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewBuilder(p, logger)
}

func TestLiveBuildsReadySnapshot(t *testing.T) {
	b := quietBuilder(&builderStub{candles: flatCandles(250)})

	snap, err := b.Live(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, snap.Ready())
	require.NotNil(t, snap.RecBias)
	assert.InDelta(t, 1.0, *snap.RecBias, 1e-12)
	assert.Nil(t, snap.NewsBias)
}

func TestLiveInsufficientHistory(t *testing.T) {
	b := quietBuilder(&builderStub{candles: flatCandles(1)})

	_, err := b.Live(context.Background(), "AAPL")
	require.Error(t, err)
	var insufficient *utils.InsufficientHistoryError
	assert.ErrorAs(t, err, &insufficient)
}

func TestLivePropagatesProviderError(t *testing.T) {
	b := quietBuilder(&builderStub{candlesErr: errors.New("rate limited")})

	_, err := b.Live(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, utils.IsSymbolError(err))
}

func TestLiveRejectsMalformedCandles(t *testing.T) {
	c := flatCandles(250)
	c.L = c.L[:100]
	b := quietBuilder(&builderStub{candles: c})

	_, err := b.Live(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, utils.IsSymbolError(err))
}

func TestHistoricalDisablesEarningsGuard(t *testing.T) {
	next := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	b := quietBuilder(&builderStub{
		candles:  flatCandles(250),
		earnings: &models.EarningsCalendar{NextDate: next},
	})

	candles, series, alt, err := b.Historical(context.Background(), "AAPL", 1500)
	require.NoError(t, err)
	assert.Equal(t, 250, candles.Len())
	require.NotNil(t, series)
	assert.False(t, alt.UpcomingEarnings)
	require.NotNil(t, alt.RecBias)
}

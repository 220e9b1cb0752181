package features

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/market"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

// liveLookbackDays is the candle history window used for live snapshots;
// roughly one trading year plus warm-up slack for the SMA200.
const liveLookbackDays = 260

// Builder assembles feature snapshots from a market data provider.
type Builder struct {
	provider market.Provider
	logger   *logrus.Logger
}

// NewBuilder creates a feature builder over the given provider.
func NewBuilder(provider market.Provider, logger *logrus.Logger) *Builder {
	return &Builder{provider: provider, logger: logger}
}

// Live builds the current feature snapshot for a symbol from its trailing
// candle history and a fresh alternative-data fetch.
func (b *Builder) Live(ctx context.Context, symbol string) (*Snapshot, error) {
	candles, err := b.provider.Candles(ctx, symbol, liveLookbackDays)
	if err != nil {
		return nil, err
	}
	if err := candles.Validate(); err != nil {
		return nil, err
	}
	if candles.Len() < 2 {
		return nil, utils.NewInsufficientHistoryError(symbol, 2, candles.Len())
	}

	alt := market.AltData(ctx, b.provider, symbol, time.Now().UTC())

	series := BuildSeriesSet(candles.H, candles.L, candles.C)
	snap := series.Latest(alt)

	b.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   candles.Len(),
		"ready":  snap.Ready(),
	}).Debug("Built live feature snapshot")

	return snap, nil
}

// Historical fetches a long candle history and precomputes the full per-bar
// series set plus the single alt-data snapshot reused across a backtest. No
// historical alt-data series exists, so the current snapshot stands in for
// every bar; the earnings guard is left off because past earnings offsets
// are unknown.
func (b *Builder) Historical(ctx context.Context, symbol string, days int) (*models.Candles, *SeriesSet, models.AltDataSnapshot, error) {
	candles, err := b.provider.Candles(ctx, symbol, days)
	if err != nil {
		return nil, nil, models.AltDataSnapshot{}, err
	}
	if err := candles.Validate(); err != nil {
		return nil, nil, models.AltDataSnapshot{}, err
	}

	alt := market.AltData(ctx, b.provider, symbol, time.Now().UTC())
	alt.UpcomingEarnings = false

	series := BuildSeriesSet(candles.H, candles.L, candles.C)
	return candles, series, alt, nil
}

package market

import (
	"context"
	"time"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
)

// Provider fetches market and alternative data for a symbol. The analytical
// core consumes only this interface, so it stays free of network I/O and is
// testable with a stub.
type Provider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Candles(ctx context.Context, symbol string, days int) (*models.Candles, error)
	RecommendationTrends(ctx context.Context, symbol string) (*models.RecommendationTrends, error)
	NewsSentiment(ctx context.Context, symbol string) (*models.NewsSentiment, error)
	EarningsCalendar(ctx context.Context, symbol string) (*models.EarningsCalendar, error)
}

// AltData collects the current alternative-data snapshot for a symbol.
// Individual fetch failures degrade to absent values rather than failing the
// whole snapshot: a prediction without analyst coverage is still a
// prediction.
func AltData(ctx context.Context, p Provider, symbol string, now time.Time) models.AltDataSnapshot {
	var snap models.AltDataSnapshot

	if rec, err := p.RecommendationTrends(ctx, symbol); err == nil && rec != nil {
		snap.RecBias = rec.Bias()
	}
	if news, err := p.NewsSentiment(ctx, symbol); err == nil && news != nil {
		snap.NewsBias = news.Bias()
	}
	if earn, err := p.EarningsCalendar(ctx, symbol); err == nil && earn != nil {
		snap.UpcomingEarnings = earn.Upcoming(now, 7)
	}
	return snap
}

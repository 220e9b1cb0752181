package market

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
)

// quoteFallbackProvider retries failed quote lookups against Stooq. All
// other calls pass through to the primary provider.
type quoteFallbackProvider struct {
	Provider
	stooq  *StooqQuoteClient
	logger *logrus.Logger
}

// WithQuoteFallback wraps a provider so that quote failures are retried
// against the Stooq CSV endpoint before being reported.
func WithQuoteFallback(p Provider, stooq *StooqQuoteClient, logger *logrus.Logger) Provider {
	return &quoteFallbackProvider{Provider: p, stooq: stooq, logger: logger}
}

func (q *quoteFallbackProvider) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	quote, err := q.Provider.Quote(ctx, symbol)
	if err == nil {
		return quote, nil
	}
	q.logger.WithField("symbol", symbol).WithError(err).Warn("Primary quote failed, trying Stooq fallback")
	return q.stooq.Quote(ctx, symbol)
}

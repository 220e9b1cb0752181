package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the current price snapshot for a symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Current       decimal.Decimal `json:"current"`
	PrevClose     decimal.Decimal `json:"prev_close"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PercentChange decimal.Decimal `json:"percent_change"`
	Timestamp     time.Time       `json:"timestamp"`
}

// RecommendationTrends holds analyst recommendation counts. Missing counts
// decode as zero.
type RecommendationTrends struct {
	Symbol     string `json:"symbol"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// Bias maps the counts into [-1,1]: (buy-side - sell-side) / total. Returns
// nil when there are no recommendations at all.
func (r *RecommendationTrends) Bias() *float64 {
	buy := r.StrongBuy + r.Buy
	sell := r.StrongSell + r.Sell
	total := buy + sell + r.Hold
	if total == 0 {
		return nil
	}
	b := float64(buy-sell) / float64(total)
	return &b
}

// NewsSentiment holds the bullish share of recent news coverage, in [0,100].
// The provider sometimes nests the value under a "sentiment" object; the
// market client flattens it before constructing this type.
type NewsSentiment struct {
	Symbol         string   `json:"symbol"`
	BullishPercent *float64 `json:"bullishPercent"`
}

// Bias maps bullishPercent into [-1,1], nil when the value is absent.
func (n *NewsSentiment) Bias() *float64 {
	if n.BullishPercent == nil {
		return nil
	}
	b := (*n.BullishPercent/100.0 - 0.5) * 2.0
	return &b
}

// EarningsCalendar carries the next scheduled earnings date, when known, as
// a YYYY-MM-DD string.
type EarningsCalendar struct {
	Symbol   string `json:"symbol"`
	NextDate string `json:"date"`
}

// Upcoming reports whether the next earnings date falls within the given
// number of days from now. The elapsed time floors to whole days, so a
// fractional day still counts toward the window. Unparseable or absent
// dates count as not upcoming.
func (e *EarningsCalendar) Upcoming(now time.Time, withinDays int) bool {
	if e == nil || e.NextDate == "" {
		return false
	}
	dt, err := time.ParseInLocation("2006-01-02", e.NextDate, time.UTC)
	if err != nil {
		return false
	}
	days := int(math.Floor(dt.Sub(now).Hours() / 24))
	return days <= withinDays
}

// AltDataSnapshot is the single point-in-time alternative-data view applied
// to a prediction, and reused across every bar of a backtest because no
// historical alt-data series is available.
type AltDataSnapshot struct {
	RecBias          *float64 `json:"rec_bias"`
	NewsBias         *float64 `json:"news_bias"`
	UpcomingEarnings bool     `json:"upcoming_earnings"`
}

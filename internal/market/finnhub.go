package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

// FinnhubClient implements Provider against the Finnhub REST API.
type FinnhubClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewFinnhubClient creates a Finnhub-backed market data provider.
func NewFinnhubClient(cfg *config.MarketDataConfig, logger *logrus.Logger) *FinnhubClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &FinnhubClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

func (c *FinnhubClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WithError(closeErr).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Quote fetches the current price snapshot for a symbol.
func (c *FinnhubClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var raw finnhubQuote
	params := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/quote", params, &raw); err != nil {
		return nil, err
	}
	if raw.Current <= 0 {
		return nil, utils.NewInvalidSnapshotError(symbol, "quote has no close price")
	}

	return &models.Quote{
		Symbol:        strings.ToUpper(symbol),
		Current:       decimal.NewFromFloat(raw.Current),
		PrevClose:     decimal.NewFromFloat(raw.PrevClose),
		Open:          decimal.NewFromFloat(raw.Open),
		High:          decimal.NewFromFloat(raw.High),
		Low:           decimal.NewFromFloat(raw.Low),
		PercentChange: decimal.NewFromFloat(raw.PercentChange),
		Timestamp:     time.Unix(raw.Timestamp, 0).UTC(),
	}, nil
}

type finnhubCandles struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// Candles fetches daily candles covering roughly the trailing number of
// calendar days.
func (c *FinnhubClient) Candles(ctx context.Context, symbol string, days int) (*models.Candles, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", now.Unix())},
	}

	var raw finnhubCandles
	if err := c.get(ctx, "/stock/candle", params, &raw); err != nil {
		return nil, err
	}
	if raw.Status != "ok" {
		return nil, utils.NewInvalidSnapshotError(symbol, fmt.Sprintf("candle response status %q", raw.Status))
	}

	candles := &models.Candles{
		Symbol: strings.ToUpper(symbol),
		T:      raw.T,
		O:      raw.O,
		H:      raw.H,
		L:      raw.L,
		C:      raw.C,
		V:      raw.V,
	}
	if err := candles.Validate(); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   candles.Len(),
	}).Debug("Fetched candles")

	return candles, nil
}

// RecommendationTrends fetches the most recent analyst recommendation counts.
func (c *FinnhubClient) RecommendationTrends(ctx context.Context, symbol string) (*models.RecommendationTrends, error) {
	var raw []models.RecommendationTrends
	params := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/stock/recommendation", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &models.RecommendationTrends{Symbol: strings.ToUpper(symbol)}, nil
	}
	// The API returns newest first.
	trend := raw[0]
	trend.Symbol = strings.ToUpper(symbol)
	return &trend, nil
}

type finnhubNewsSentiment struct {
	Symbol         string   `json:"symbol"`
	BullishPercent *float64 `json:"bullishPercent"`
	Sentiment      *struct {
		BullishPercent *float64 `json:"bullishPercent"`
	} `json:"sentiment"`
}

// NewsSentiment fetches the bullish share of recent news coverage. The
// bullishPercent field may arrive either at the top level or nested under a
// sentiment object.
func (c *FinnhubClient) NewsSentiment(ctx context.Context, symbol string) (*models.NewsSentiment, error) {
	var raw finnhubNewsSentiment
	params := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/news-sentiment", params, &raw); err != nil {
		return nil, err
	}

	bullish := raw.BullishPercent
	if bullish == nil && raw.Sentiment != nil {
		bullish = raw.Sentiment.BullishPercent
	}
	return &models.NewsSentiment{
		Symbol:         strings.ToUpper(symbol),
		BullishPercent: bullish,
	}, nil
}

type finnhubEarnings struct {
	EarningsCalendar []struct {
		Date string `json:"date"`
	} `json:"earningsCalendar"`
}

// EarningsCalendar fetches the next scheduled earnings date within the
// coming weeks, if any.
func (c *FinnhubClient) EarningsCalendar(ctx context.Context, symbol string) (*models.EarningsCalendar, error) {
	now := time.Now().UTC()
	params := url.Values{
		"symbol": {symbol},
		"from":   {now.Format("2006-01-02")},
		"to":     {now.AddDate(0, 0, 21).Format("2006-01-02")},
	}

	var raw finnhubEarnings
	if err := c.get(ctx, "/calendar/earnings", params, &raw); err != nil {
		return nil, err
	}

	out := &models.EarningsCalendar{Symbol: strings.ToUpper(symbol)}
	if len(raw.EarningsCalendar) > 0 {
		out.NextDate = raw.EarningsCalendar[0].Date
	}
	return out, nil
}

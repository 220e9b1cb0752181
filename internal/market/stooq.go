package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

const stooqQuoteURL = "https://stooq.com/q/l/?s=%s&i=d"

// StooqQuoteClient fetches quotes from the Stooq CSV endpoint. Used as a
// fallback when the primary provider's quote endpoint is unavailable on the
// current plan. The daily interval carries no previous close, so the open is
// used as an approximation.
type StooqQuoteClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewStooqQuoteClient creates a Stooq quote fallback client.
func NewStooqQuoteClient(logger *logrus.Logger) *StooqQuoteClient {
	return &StooqQuoteClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// normalizeSymbol maps user tickers to Stooq's form: AAPL -> aapl.us. A
// symbol that already carries a market suffix is kept as-is.
func normalizeSymbol(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".us"
}

// Quote fetches the latest daily quote for a symbol from Stooq.
func (c *StooqQuoteClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	norm := normalizeSymbol(symbol)
	if norm == "" {
		return nil, utils.NewInvalidSnapshotError(symbol, "empty symbol")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(stooqQuoteURL, norm), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WithError(closeErr).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseStooqCSV(symbol, string(body))
}

// parseStooqCSV parses the two-line Stooq payload:
// Symbol,Date,Time,Open,High,Low,Close,Volume
func parseStooqCSV(symbol, payload string) (*models.Quote, error) {
	var lines []string
	for _, ln := range strings.Split(payload, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimSpace(ln))
		}
	}
	if len(lines) < 2 {
		return nil, utils.NewInvalidSnapshotError(symbol, "quote payload has no data row")
	}
	parts := strings.Split(lines[1], ",")
	if len(parts) < 8 {
		return nil, utils.NewInvalidSnapshotError(symbol, "quote row has too few fields")
	}

	open, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return nil, utils.NewInvalidSnapshotError(symbol, "unparseable open price")
	}
	high, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return nil, utils.NewInvalidSnapshotError(symbol, "unparseable high price")
	}
	low, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return nil, utils.NewInvalidSnapshotError(symbol, "unparseable low price")
	}
	closePrice, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return nil, utils.NewInvalidSnapshotError(symbol, "quote has no close price")
	}

	prevClose := open
	pctChange := 0.0
	if prevClose != 0 {
		pctChange = (closePrice - prevClose) / prevClose * 100
	}

	outSymbol := strings.ToUpper(strings.SplitN(parts[0], ".", 2)[0])
	return &models.Quote{
		Symbol:        outSymbol,
		Current:       decimal.NewFromFloat(closePrice),
		PrevClose:     decimal.NewFromFloat(prevClose),
		Open:          decimal.NewFromFloat(open),
		High:          decimal.NewFromFloat(high),
		Low:           decimal.NewFromFloat(low),
		PercentChange: decimal.NewFromFloat(pctChange),
		Timestamp:     time.Now().UTC(),
	}, nil
}

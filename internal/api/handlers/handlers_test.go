package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/features"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/optimize"
	"github.com/ishanbais13-gif/stackiq-go/internal/services"
)

type stubProvider struct {
	candles map[string]*models.Candles
}

func (s *stubProvider) Quote(_ context.Context, _ string) (*models.Quote, error) {
	return nil, errors.New("quote not stubbed")
}

func (s *stubProvider) Candles(_ context.Context, symbol string, _ int) (*models.Candles, error) {
	c, ok := s.candles[symbol]
	if !ok {
		return nil, errors.New("no candles for symbol")
	}
	return c, nil
}

func (s *stubProvider) RecommendationTrends(_ context.Context, _ string) (*models.RecommendationTrends, error) {
	return &models.RecommendationTrends{Sell: 10}, nil
}

func (s *stubProvider) NewsSentiment(_ context.Context, _ string) (*models.NewsSentiment, error) {
	zero := 0.0
	return &models.NewsSentiment{BullishPercent: &zero}, nil
}

func (s *stubProvider) EarningsCalendar(_ context.Context, _ string) (*models.EarningsCalendar, error) {
	return nil, errors.New("no calendar")
}

func riserCandles(symbol string, n int) *models.Candles {
	base := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	c := &models.Candles{
		Symbol: symbol,
		T:      make([]int64, n),
		O:      make([]float64, n),
		H:      make([]float64, n),
		L:      make([]float64, n),
		C:      make([]float64, n),
		V:      make([]float64, n),
	}
	price := 1.0
	for i := 0; i < n; i++ {
		c.T[i] = base + int64(i)*86400
		c.O[i], c.H[i], c.L[i], c.C[i] = price, price, price, price
		c.V[i] = 1_000_000
		price *= 1.02
	}
	return c
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultBudget:   10_000,
		HoldDays:        15,
		BuyThreshold:    67,
		SellThreshold:   33,
		BacktestWorkers: 2,
	}
}

func testRouter(t *testing.T, provider *stubProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	builder := features.NewBuilder(provider, logger)
	runner := backtest.NewRunner(builder, logger)
	engineCfg := testEngineConfig()
	optCfg := config.OptimizerConfig{Scale: 0.2, TopK: 5, Workers: 2}

	predict := NewPredictHandler(services.NewPredictor(builder, logger), engineCfg)
	bt := NewBacktestHandler(runner, nil, engineCfg, logger)
	opt := NewOptimizeHandler(optimize.NewOptimizer(runner, logger), engineCfg, optCfg)
	runs := NewRunsHandler(nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	predictGroup := v1.Group("/predict")
	predictGroup.GET("/:symbol", predict.GetPrediction)
	predictGroup.POST("/batch", predict.PostBatch)
	v1.POST("/backtest", bt.PostBacktest)
	v1.POST("/optimize", opt.PostOptimize)
	runsGroup := v1.Group("/runs")
	runsGroup.GET("", runs.ListRuns)
	runsGroup.GET("/:id/trades", runs.GetTrades)
	return router
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanbais13-gif/stackiq-go/internal/api/handlers"
	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/features"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/optimize"
	"github.com/ishanbais13-gif/stackiq-go/internal/services"
)

type emptyProvider struct{}

func (emptyProvider) Quote(context.Context, string) (*models.Quote, error) {
	return nil, errors.New("not available")
}

func (emptyProvider) Candles(context.Context, string, int) (*models.Candles, error) {
	return nil, errors.New("not available")
}

func (emptyProvider) RecommendationTrends(context.Context, string) (*models.RecommendationTrends, error) {
	return nil, errors.New("not available")
}

func (emptyProvider) NewsSentiment(context.Context, string) (*models.NewsSentiment, error) {
	return nil, errors.New("not available")
}

func (emptyProvider) EarningsCalendar(context.Context, string) (*models.EarningsCalendar, error) {
	return nil, errors.New("not available")
}

func newTestDependencies(t *testing.T) Dependencies {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Engine: config.EngineConfig{
			DefaultBudget: 10_000,
			HoldDays:      15,
			BuyThreshold:  67,
			SellThreshold: 33,
		},
		Optimizer: config.OptimizerConfig{Scale: 0.2, TopK: 5, Workers: 2},
	}

	builder := features.NewBuilder(&emptyProvider{}, logger)
	runner := backtest.NewRunner(builder, logger)

	return Dependencies{
		Config:   cfg,
		Predict:  handlers.NewPredictHandler(services.NewPredictor(builder, logger), cfg.Engine),
		Backtest: handlers.NewBacktestHandler(runner, nil, cfg.Engine, logger),
		Optimize: handlers.NewOptimizeHandler(optimize.NewOptimizer(runner, logger), cfg.Engine, cfg.Optimizer),
		Runs:     handlers.NewRunsHandler(nil),
	}
}

func TestHealthReportsDisabledDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, newTestDependencies(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.Services.Database)
	assert.Equal(t, "disabled", resp.Services.Redis)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestSetupRoutesRegistersAPIEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, newTestDependencies(t))

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	assert.True(t, registered["GET /health"])
	assert.True(t, registered["GET /api/v1/predict/:symbol"])
	assert.True(t, registered["POST /api/v1/predict/batch"])
	assert.True(t, registered["POST /api/v1/backtest"])
	assert.True(t, registered["POST /api/v1/optimize"])
	assert.True(t, registered["GET /api/v1/runs"])
	assert.True(t, registered["GET /api/v1/runs/:id/trades"])
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ishanbais13-gif/stackiq-go/internal/api/handlers"
	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Dependencies carries everything the HTTP layer needs. Database and Redis
// are optional; endpoints that need a missing dependency report it instead
// of panicking.
type Dependencies struct {
	Config   *config.Config
	DB       *database.PostgresDB
	Redis    *database.RedisClient
	Predict  *handlers.PredictHandler
	Backtest *handlers.BacktestHandler
	Optimize *handlers.OptimizeHandler
	Runs     *handlers.RunsHandler
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthCheck(deps.DB, deps.Redis))

	v1 := router.Group("/api/v1")
	{
		predict := v1.Group("/predict")
		{
			predict.GET("/:symbol", deps.Predict.GetPrediction)
			predict.POST("/batch", deps.Predict.PostBatch)
		}

		v1.POST("/backtest", deps.Backtest.PostBacktest)
		v1.POST("/optimize", deps.Optimize.PostOptimize)

		runs := v1.Group("/runs")
		{
			runs.GET("", deps.Runs.ListRuns)
			runs.GET("/:id/trades", deps.Runs.GetTrades)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		if db == nil {
			response.Services.Database = "disabled"
		} else if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		if redis == nil {
			response.Services.Redis = "disabled"
		} else if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
	"github.com/ishanbais13-gif/stackiq-go/internal/optimize"
)

type OptimizeHandler struct {
	optimizer *optimize.Optimizer
	engineCfg config.EngineConfig
	optCfg    config.OptimizerConfig
}

type OptimizeRequest struct {
	Symbols  []string        `json:"symbols"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Budget   float64         `json:"budget"`
	HoldDays int             `json:"hold_days"`
	Base     *engine.Weights `json:"base_weights,omitempty"`
	Scale    float64         `json:"scale"`
	TopK     int             `json:"top_k"`
	Workers  int             `json:"workers"`
}

func NewOptimizeHandler(optimizer *optimize.Optimizer, engineCfg config.EngineConfig, optCfg config.OptimizerConfig) *OptimizeHandler {
	return &OptimizeHandler{optimizer: optimizer, engineCfg: engineCfg, optCfg: optCfg}
}

// PostOptimize grid-searches weight variants and threshold pairs over the
// requested symbols and returns the ranked trials.
func (h *OptimizeHandler) PostOptimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}

	start, end, err := parseWindow(req.Start, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opt := optimize.Request{
		Symbols:  req.Symbols,
		Start:    start,
		End:      end,
		Budget:   req.Budget,
		HoldDays: req.HoldDays,
		Scale:    req.Scale,
		TopK:     req.TopK,
		Workers:  req.Workers,
	}
	if opt.Budget <= 0 {
		opt.Budget = h.engineCfg.DefaultBudget
	}
	if opt.HoldDays <= 0 {
		opt.HoldDays = h.engineCfg.HoldDays
	}
	if opt.Scale == 0 {
		opt.Scale = h.optCfg.Scale
	}
	if opt.TopK <= 0 {
		opt.TopK = h.optCfg.TopK
	}
	if opt.Workers <= 0 {
		opt.Workers = h.optCfg.Workers
	}
	if req.Base != nil && req.Base.Sum() > 0 {
		opt.Base = *req.Base
	}

	report, err := h.optimizer.GridSearch(c.Request.Context(), opt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "optimization failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
	"github.com/ishanbais13-gif/stackiq-go/internal/services"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

type PredictHandler struct {
	predictor *services.Predictor
	cfg       config.EngineConfig
}

type BatchPredictRequest struct {
	Symbols       []string        `json:"symbols"`
	Budget        float64         `json:"budget"`
	BuyThreshold  float64         `json:"buy_threshold"`
	SellThreshold float64         `json:"sell_threshold"`
	Weights       *engine.Weights `json:"weights,omitempty"`
	Workers       int             `json:"workers"`
}

func NewPredictHandler(predictor *services.Predictor, cfg config.EngineConfig) *PredictHandler {
	return &PredictHandler{predictor: predictor, cfg: cfg}
}

// GetPrediction returns the live signal and sized plan for one symbol.
func (h *PredictHandler) GetPrediction(c *gin.Context) {
	symbol := c.Param("symbol")

	budget := h.cfg.DefaultBudget
	if raw := c.Query("budget"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be a positive number"})
			return
		}
		budget = v
	}

	pred, err := h.predictor.Predict(c.Request.Context(), symbol, budget,
		h.cfg.BuyThreshold, h.cfg.SellThreshold, engine.DefaultWeights())
	if err != nil {
		if utils.IsSymbolError(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to build prediction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, pred)
}

// PostBatch predicts a list of symbols, splitting the budget evenly.
func (h *PredictHandler) PostBatch(c *gin.Context) {
	var req BatchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}

	if req.Budget <= 0 {
		req.Budget = h.cfg.DefaultBudget
	}
	if req.BuyThreshold == 0 {
		req.BuyThreshold = h.cfg.BuyThreshold
	}
	if req.SellThreshold == 0 {
		req.SellThreshold = h.cfg.SellThreshold
	}
	w := engine.DefaultWeights()
	if req.Weights != nil && req.Weights.Sum() > 0 {
		w = *req.Weights
	}

	batch, err := h.predictor.PredictBatch(c.Request.Context(), req.Symbols,
		req.Budget, req.BuyThreshold, req.SellThreshold, w, req.Workers)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "batch prediction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, batch)
}

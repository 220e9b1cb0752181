package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/config"
	"github.com/ishanbais13-gif/stackiq-go/internal/database"
	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
)

const dateLayout = "2006-01-02"

type BacktestHandler struct {
	runner *backtest.Runner
	repo   *database.RunRepository
	cfg    config.EngineConfig
	logger *logrus.Logger
}

type BacktestRequest struct {
	Symbols       []string        `json:"symbols"`
	Start         string          `json:"start"`
	End           string          `json:"end"`
	Budget        float64         `json:"budget"`
	HoldDays      int             `json:"hold_days"`
	BuyThreshold  float64         `json:"buy_threshold"`
	SellThreshold float64         `json:"sell_threshold"`
	Weights       *engine.Weights `json:"weights,omitempty"`
	Workers       int             `json:"workers"`
	Persist       bool            `json:"persist"`
}

type BacktestResponse struct {
	Results   []*backtest.Result     `json:"results"`
	Failures  []backtest.SymbolError `json:"failures,omitempty"`
	Aggregate backtest.Aggregate     `json:"aggregate"`
	RunIDs    []string               `json:"run_ids,omitempty"`
}

// NewBacktestHandler creates the backtest endpoint. repo may be nil when
// persistence is not configured; persist requests are then rejected.
func NewBacktestHandler(runner *backtest.Runner, repo *database.RunRepository, cfg config.EngineConfig, logger *logrus.Logger) *BacktestHandler {
	return &BacktestHandler{runner: runner, repo: repo, cfg: cfg, logger: logger}
}

// PostBacktest runs the walk-forward simulation over the requested symbols
// and returns per-symbol results plus the cross-symbol aggregate.
func (h *BacktestHandler) PostBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}
	if req.Persist && h.repo == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "persistence is not configured"})
		return
	}

	p, err := h.paramsFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, failures, err := h.runner.RunMany(c.Request.Context(), req.Symbols, p, req.Workers)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "backtest failed: " + err.Error()})
		return
	}

	resp := BacktestResponse{
		Results:   results,
		Failures:  failures,
		Aggregate: backtest.AggregateResults(results),
	}

	if req.Persist {
		for _, res := range results {
			id, err := h.repo.SaveRun(c.Request.Context(), p, res)
			if err != nil {
				h.logger.WithField("symbol", res.Symbol).WithError(err).Warn("Failed to persist backtest run")
				continue
			}
			resp.RunIDs = append(resp.RunIDs, id)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BacktestHandler) paramsFromRequest(req *BacktestRequest) (backtest.Params, error) {
	p := backtest.Params{
		Budget:        req.Budget,
		HoldDays:      req.HoldDays,
		BuyThreshold:  req.BuyThreshold,
		SellThreshold: req.SellThreshold,
		Weights:       engine.DefaultWeights(),
	}
	if p.Budget <= 0 {
		p.Budget = h.cfg.DefaultBudget
	}
	if p.HoldDays <= 0 {
		p.HoldDays = h.cfg.HoldDays
	}
	if p.BuyThreshold == 0 {
		p.BuyThreshold = h.cfg.BuyThreshold
	}
	if p.SellThreshold == 0 {
		p.SellThreshold = h.cfg.SellThreshold
	}
	if req.Weights != nil && req.Weights.Sum() > 0 {
		p.Weights = *req.Weights
	}

	var err error
	if p.Start, p.End, err = parseWindow(req.Start, req.End); err != nil {
		return backtest.Params{}, err
	}
	return p, nil
}

// parseWindow resolves the simulation window. An empty end means today; an
// empty start means three years before the end.
func parseWindow(start, end string) (time.Time, time.Time, error) {
	var s, e time.Time
	var err error

	if end == "" {
		e = time.Now().UTC().Truncate(24 * time.Hour)
	} else if e, err = time.Parse(dateLayout, end); err != nil {
		return s, e, &requestError{"end must be a YYYY-MM-DD date"}
	}
	if start == "" {
		s = e.AddDate(-3, 0, 0)
	} else if s, err = time.Parse(dateLayout, start); err != nil {
		return s, e, &requestError{"start must be a YYYY-MM-DD date"}
	}
	if !s.Before(e) {
		return s, e, &requestError{"start must be before end"}
	}
	return s, e, nil
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

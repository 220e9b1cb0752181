package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ishanbais13-gif/stackiq-go/internal/database"
)

type RunsHandler struct {
	repo *database.RunRepository
}

// NewRunsHandler creates the persisted-run endpoints. repo may be nil when
// no database is configured.
func NewRunsHandler(repo *database.RunRepository) *RunsHandler {
	return &RunsHandler{repo: repo}
}

// ListRuns returns recently persisted backtest runs, optionally filtered
// by symbol.
func (h *RunsHandler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}

	runs, err := h.repo.RecentRuns(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// GetTrades returns the trade ledger of one persisted run.
func (h *RunsHandler) GetTrades(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return
	}

	runID := c.Param("id")
	trades, err := h.repo.TradesForRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trades: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID, "trades": trades, "count": len(trades)})
}

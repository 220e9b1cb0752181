package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/services"
)

func TestGetPredictionReturnsPlan(t *testing.T) {
	router := testRouter(t, &stubProvider{
		candles: map[string]*models.Candles{"AAPL": riserCandles("AAPL", 320)},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict/AAPL", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var pred services.Prediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pred))
	assert.Equal(t, "AAPL", pred.Symbol)
	assert.Equal(t, "SELL", string(pred.Signal))
	assert.NotEmpty(t, pred.Rationale)
}

func TestGetPredictionBadBudget(t *testing.T) {
	router := testRouter(t, &stubProvider{candles: map[string]*models.Candles{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict/AAPL?budget=-5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPredictionInsufficientHistory(t *testing.T) {
	// Live snapshots need at least two bars; one is a typed symbol error.
	router := testRouter(t, &stubProvider{
		candles: map[string]*models.Candles{"AAPL": riserCandles("AAPL", 1)},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict/AAPL", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestGetPredictionUpstreamFailure(t *testing.T) {
	router := testRouter(t, &stubProvider{candles: map[string]*models.Candles{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict/AAPL", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPostBatchMixedOutcomes(t *testing.T) {
	router := testRouter(t, &stubProvider{
		candles: map[string]*models.Candles{"AAPL": riserCandles("AAPL", 320)},
	})

	body, _ := json.Marshal(BatchPredictRequest{Symbols: []string{"AAPL", "GONE"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var batch services.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 2)
	assert.NotNil(t, batch.Results[0].Prediction)
	assert.NotEmpty(t, batch.Results[1].Error)
	require.NotNil(t, batch.Best)
	assert.Equal(t, "AAPL", batch.Best.Symbol)
	assert.Equal(t, 5000.0, batch.PerSymbolBudget)
}

func TestPostBatchRequiresSymbols(t *testing.T) {
	router := testRouter(t, &stubProvider{candles: map[string]*models.Candles{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict/batch", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostBatchRejectsMalformedBody(t *testing.T) {
	router := testRouter(t, &stubProvider{candles: map[string]*models.Candles{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict/batch", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

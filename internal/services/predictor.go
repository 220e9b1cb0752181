// Package services holds the application-facing orchestration over the
// analytical core: live prediction, batch prediction and persistence glue.
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
	"github.com/ishanbais13-gif/stackiq-go/internal/features"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

// Prediction is the live signal for one symbol: the current feature view
// plus the sized position plan derived from it.
type Prediction struct {
	Symbol   string             `json:"symbol"`
	Price    float64            `json:"price"`
	Features *features.Snapshot `json:"features"`
	*engine.Plan
}

// BatchItem tags one symbol's outcome inside a batch: either a prediction
// or the error that prevented one, never both.
type BatchItem struct {
	Symbol     string      `json:"symbol"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// BatchResult is a multi-symbol prediction with the budget split evenly
// across symbols and the most confident prediction called out.
type BatchResult struct {
	TotalBudget     float64     `json:"total_budget"`
	PerSymbolBudget float64     `json:"per_symbol_budget"`
	Results         []BatchItem `json:"results"`
	Best            *Prediction `json:"best,omitempty"`
}

// Predictor produces live trading signals from the feature builder.
type Predictor struct {
	builder *features.Builder
	logger  *logrus.Logger
}

// NewPredictor creates a predictor over the given feature builder.
func NewPredictor(builder *features.Builder, logger *logrus.Logger) *Predictor {
	return &Predictor{builder: builder, logger: logger}
}

// Predict builds the live snapshot for a symbol and plans a position
// against the budget.
func (p *Predictor) Predict(ctx context.Context, symbol string, budget, buy, sell float64, w engine.Weights) (*Prediction, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive, got %.2f", budget)
	}

	symbol = strings.ToUpper(symbol)
	f, err := p.builder.Live(ctx, symbol)
	if err != nil {
		return nil, err
	}

	plan := engine.PlanPosition(f, budget, buy, sell, w)
	p.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"signal":     plan.Signal,
		"confidence": plan.Confidence,
	}).Info("Prediction computed")

	return &Prediction{
		Symbol:   symbol,
		Price:    math.Round(f.Price*10000) / 10000,
		Features: f,
		Plan:     plan,
	}, nil
}

// PredictBatch fans the per-symbol budget share out across symbols on a
// bounded worker pool. Per-symbol failures become tagged error items; the
// call errors only when the input is invalid or no symbol succeeds.
func (p *Predictor) PredictBatch(ctx context.Context, symbols []string, budget, buy, sell float64, w engine.Weights, workers int) (*BatchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("batch prediction requires at least one symbol")
	}
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive, got %.2f", budget)
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	perSymbol := budget / float64(len(symbols))
	items := make([]BatchItem, len(symbols))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				symbol := strings.ToUpper(symbols[idx])
				pred, err := p.Predict(ctx, symbol, perSymbol, buy, sell, w)
				if err != nil {
					items[idx] = BatchItem{Symbol: symbol, Error: err.Error()}
					if !utils.IsSymbolError(err) {
						p.logger.WithField("symbol", symbol).WithError(err).Warn("Batch prediction failed for symbol")
					}
					continue
				}
				items[idx] = BatchItem{Symbol: symbol, Prediction: pred}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range symbols {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var best *Prediction
	succeeded := 0
	for _, item := range items {
		if item.Prediction == nil {
			continue
		}
		succeeded++
		if best == nil || item.Prediction.Confidence > best.Confidence {
			best = item.Prediction
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("all %d symbols failed to predict", len(symbols))
	}

	return &BatchResult{
		TotalBudget:     budget,
		PerSymbolBudget: math.Round(perSymbol*100) / 100,
		Results:         items,
		Best:            best,
	}, nil
}

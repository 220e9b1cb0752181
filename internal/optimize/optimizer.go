// Package optimize implements a grid search over scoring weights and
// decision thresholds: it perturbs a base weight table, re-runs the
// backtest simulator for every candidate configuration and ranks the
// results. The search is a pure function of its request; weights are
// threaded explicitly through every trial, so trials run concurrently
// without shared state.
package optimize

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
)

// Grid search defaults.
const (
	DefaultScale   = 0.2
	DefaultTopK    = 5
	defaultWorkers = 2
)

// thresholdPairs are the (buy, sell) combinations crossed with every weight
// candidate. The unmodified baseline additionally always runs at the
// default 67/33.
var thresholdPairs = [][2]float64{{65, 35}, {67, 33}, {70, 30}}

// Request describes one grid search.
type Request struct {
	Symbols  []string       `json:"symbols"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Budget   float64        `json:"budget"`
	HoldDays int            `json:"hold_days"`
	Base     engine.Weights `json:"base_weights"`
	Scale    float64        `json:"scale"`
	TopK     int            `json:"top_k"`
	Workers  int            `json:"workers"`
}

// Trial is one evaluated (weights, thresholds) configuration.
type Trial struct {
	ID       string                 `json:"id"`
	Weights  engine.Weights         `json:"weights"`
	Buy      float64                `json:"buy"`
	Sell     float64                `json:"sell"`
	Metrics  backtest.Aggregate     `json:"metrics"`
	Failures []backtest.SymbolError `json:"failures,omitempty"`
}

// Report is the ranked outcome of a grid search.
type Report struct {
	Best   *Trial   `json:"best"`
	Top    []*Trial `json:"top"`
	Trials int      `json:"trials"`
}

// Optimizer drives repeated backtest runs over candidate configurations.
type Optimizer struct {
	runner *backtest.Runner
	logger *logrus.Logger
}

// NewOptimizer creates an optimizer over the given backtest runner.
func NewOptimizer(runner *backtest.Runner, logger *logrus.Logger) *Optimizer {
	return &Optimizer{runner: runner, logger: logger}
}

type trialSpec struct {
	weights engine.Weights
	buy     float64
	sell    float64
}

// GridSearch evaluates the baseline plus every weight variant crossed with
// the threshold pairs, ranks the usable trials by Sharpe then CAGR and
// returns the top-K. Candidates whose backtests fail on every symbol are
// skipped rather than recorded as zero-scoring; a search where nothing at
// all succeeds is a top-level error.
func (o *Optimizer) GridSearch(ctx context.Context, req Request) (*Report, error) {
	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("grid search requires at least one symbol")
	}

	base := req.Base
	if base.Sum() == 0 {
		base = engine.DefaultWeights()
	}
	scale := req.Scale
	if scale <= 0 || scale >= 1 {
		scale = DefaultScale
	}
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	workers := req.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	specs := []trialSpec{{weights: base, buy: engine.DefaultBuyThreshold, sell: engine.DefaultSellThreshold}}
	for _, w := range Variants(base, scale) {
		for _, th := range thresholdPairs {
			specs = append(specs, trialSpec{weights: w, buy: th[0], sell: th[1]})
		}
	}

	o.logger.WithFields(logrus.Fields{
		"symbols":    len(req.Symbols),
		"candidates": len(specs),
		"scale":      scale,
	}).Info("Starting grid search")

	trialsByIdx := make([]*Trial, len(specs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				trialsByIdx[idx] = o.runTrial(ctx, specs[idx], req)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range specs {
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

	trials := make([]*Trial, 0, len(trialsByIdx))
	for _, tr := range trialsByIdx {
		if tr != nil {
			trials = append(trials, tr)
		}
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("grid search produced no usable trials across %d candidates", len(specs))
	}

	rankTrials(trials)
	if topK > len(trials) {
		topK = len(trials)
	}

	return &Report{
		Best:   trials[0],
		Top:    trials[:topK],
		Trials: len(trials),
	}, nil
}

// runTrial backtests one configuration across the requested symbols. A nil
// return means the trial produced nothing usable.
func (o *Optimizer) runTrial(ctx context.Context, sp trialSpec, req Request) *Trial {
	p := backtest.Params{
		Start:         req.Start,
		End:           req.End,
		Budget:        req.Budget,
		HoldDays:      req.HoldDays,
		BuyThreshold:  sp.buy,
		SellThreshold: sp.sell,
		Weights:       sp.weights,
	}

	results, failures, err := o.runner.RunMany(ctx, req.Symbols, p, 0)
	if err != nil {
		o.logger.WithFields(logrus.Fields{
			"buy":  sp.buy,
			"sell": sp.sell,
		}).WithError(err).Warn("Grid search trial skipped")
		return nil
	}

	return &Trial{
		ID:       uuid.NewString(),
		Weights:  sp.weights,
		Buy:      sp.buy,
		Sell:     sp.sell,
		Metrics:  backtest.AggregateResults(results),
		Failures: failures,
	}
}

// rankTrials orders trials by aggregate Sharpe descending, breaking ties by
// CAGR descending. Missing metrics rank as zero.
func rankTrials(trials []*Trial) {
	sort.SliceStable(trials, func(i, j int) bool {
		si, sj := orZero(trials[i].Metrics.Sharpe), orZero(trials[j].Metrics.Sharpe)
		if si != sj {
			return si > sj
		}
		return orZero(trials[i].Metrics.CAGR) > orZero(trials[j].Metrics.CAGR)
	})
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

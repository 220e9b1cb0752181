package backtest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
	"github.com/ishanbais13-gif/stackiq-go/internal/features"
	"github.com/ishanbais13-gif/stackiq-go/internal/models"
	"github.com/ishanbais13-gif/stackiq-go/internal/utils"
)

const (
	// warmupBars is the indicator warm-up the walk-forward loop requires
	// before the first tradeable bar: the SMA200 plus slack.
	warmupBars = 220

	// historyDays is the candle window fetched per run, roughly six years
	// of daily bars.
	historyDays = 1500
)

// Runner replays the scoring model bar-by-bar against historical candles.
type Runner struct {
	builder *features.Builder
	logger  *logrus.Logger
}

// NewRunner creates a backtest runner over the given feature builder.
func NewRunner(builder *features.Builder, logger *logrus.Logger) *Runner {
	return &Runner{builder: builder, logger: logger}
}

// Run executes the walk-forward simulation for one symbol.
func (r *Runner) Run(ctx context.Context, symbol string, p Params) (*Result, error) {
	candles, series, alt, err := r.builder.Historical(ctx, symbol, historyDays)
	if err != nil {
		return nil, err
	}
	if candles.Len() < warmupBars {
		return nil, utils.NewInsufficientHistoryError(symbol, warmupBars, candles.Len())
	}

	iStart := candles.IndexAtOrAfter(p.Start)
	iEnd := candles.IndexAtOrAfter(p.End)
	if iEnd <= iStart+warmupBars {
		return nil, utils.NewInsufficientHistoryErrorf(symbol,
			"backtest window too short (need >%d trading days for indicators)", warmupBars)
	}

	trades, equity, err := r.walkForward(ctx, candles, series, alt, p, iStart, iEnd)
	if err != nil {
		return nil, err
	}

	metrics := computeMetrics(symbol, trades, equity, p.Budget, iEnd-iStart)
	result := &Result{
		Symbol:  metrics.Symbol,
		Metrics: metrics,
		Summary: summarize(metrics),
		Trades:  trades,
	}

	r.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"trades": metrics.Trades,
		"sharpe": metrics.Sharpe,
	}).Debug("Backtest completed")

	return result, nil
}

// walkForward runs the FLAT/LONG/SHORT state machine over [iStart, iEnd],
// one position at a time, and samples mark-to-market equity once per bar.
func (r *Runner) walkForward(
	ctx context.Context,
	candles *models.Candles,
	series *features.SeriesSet,
	alt models.AltDataSnapshot,
	p Params,
	iStart, iEnd int,
) ([]TradeRecord, []float64, error) {
	var pos *position
	trades := make([]TradeRecord, 0)
	equity := make([]float64, 0, iEnd-iStart+1)
	realized := 0.0

	for i := iStart; i <= iEnd; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		price := candles.C[i]
		hi := candles.H[i]
		lo := candles.L[i]

		eq := p.Budget + realized
		if pos != nil {
			eq += pos.unrealized(price)
		}
		equity = append(equity, eq)

		if pos != nil {
			if record, closed := checkExit(pos, candles, i, price, hi, lo, p.HoldDays); closed {
				trades = append(trades, *record)
				realized += record.PnL
				pos = nil
			}
		}

		if pos == nil {
			pos = r.tryOpen(series, alt, p, i, price)
		}
	}

	return trades, equity, nil
}

// checkExit applies the intrabar exit rules for the current bar: stop and
// target via high/low, with the stop taking precedence when both trigger on
// the same bar, then the time exit at the close once the holding duration
// reaches the max hold.
func checkExit(pos *position, candles *models.Candles, i int, price, hi, lo float64, holdDays int) (*TradeRecord, bool) {
	exitPrice := 0.0
	reason := ""

	if pos.side == SideLong {
		hitStop := lo <= pos.stop
		hitTarget := hi >= pos.target
		switch {
		case hitStop:
			// Conservative tie-break: the stop wins even when the target
			// also printed inside the same bar.
			exitPrice, reason = pos.stop, ExitStop
		case hitTarget:
			exitPrice, reason = pos.target, ExitTarget
		}
	} else {
		hitStop := hi >= pos.stop
		hitTarget := lo <= pos.target
		switch {
		case hitStop:
			exitPrice, reason = pos.stop, ExitStop
		case hitTarget:
			exitPrice, reason = pos.target, ExitTarget
		}
	}

	maxHold := (i - pos.entryIdx) >= holdDays
	if reason == "" && !maxHold {
		return nil, false
	}
	if reason == "" {
		exitPrice, reason = price, ExitTime
	}

	var pnl, ret float64
	if pos.side == SideLong {
		pnl = float64(pos.shares) * (exitPrice - pos.entry)
		ret = (exitPrice - pos.entry) / pos.entry
	} else {
		pnl = float64(pos.shares) * (pos.entry - exitPrice)
		ret = (pos.entry - exitPrice) / pos.entry
	}

	return &TradeRecord{
		EntryDate: candles.BarDate(pos.entryIdx).Format("2006-01-02"),
		ExitDate:  candles.BarDate(i).Format("2006-01-02"),
		Side:      pos.side,
		Entry:     roundTo(pos.entry, 4),
		Exit:      roundTo(exitPrice, 4),
		Target:    roundTo(pos.target, 4),
		Stop:      roundTo(pos.stop, 4),
		Shares:    pos.shares,
		PnL:       roundTo(pnl, 2),
		Return:    roundTo(ret, 4),
		Reason:    reason,
	}, true
}

// tryOpen scores bar i and opens a position when the bar is ready, the
// confidence clears a threshold, and the sizing rules produce at least one
// share.
func (r *Runner) tryOpen(series *features.SeriesSet, alt models.AltDataSnapshot, p Params, i int, price float64) *position {
	f := series.At(i, alt)
	if !f.Ready() {
		return nil
	}

	confidence, _ := engine.Score(f, p.Weights)

	side := ""
	if confidence >= p.BuyThreshold {
		side = SideLong
	} else if confidence <= p.SellThreshold {
		side = SideShort
	}
	if side == "" {
		return nil
	}

	atr := *f.ATR
	atrp := 0.0
	if price != 0 {
		atrp = atr / price
	}
	rMultiple := engine.RiskMultiple(atrp)

	entry := price
	target := entry + rMultiple*atr
	stop := entry - atr
	if side == SideShort {
		target = entry - rMultiple*atr
		stop = entry + atr
	}

	// Simulation sizing uses the risk and budget caps only. The Kelly cap
	// from live plans is keyed on the confidence edge above 50, which is
	// zero for every short entry.
	stopDist := math.Abs(entry - stop)
	if stopDist == 0 {
		stopDist = 0.02 * entry
	}
	riskCap := math.Max(0.01*p.Budget, 10.0)
	shares := int(math.Min(math.Floor(riskCap/stopDist), math.Floor(p.Budget/entry)))
	if shares <= 0 {
		return nil
	}

	return &position{
		side:     side,
		entry:    entry,
		entryIdx: i,
		target:   target,
		stop:     stop,
		atr:      atr,
		shares:   shares,
	}
}

// SymbolError records a per-symbol failure inside a multi-symbol run.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// RunMany fans the same params out across symbols on a bounded worker pool.
// Per-symbol failures are collected, not propagated; the call errors only
// when context is cancelled or no symbol succeeds.
func (r *Runner) RunMany(ctx context.Context, symbols []string, p Params, workers int) ([]*Result, []SymbolError, error) {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	type outcome struct {
		idx    int
		result *Result
		err    error
	}

	jobs := make(chan int)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := r.Run(ctx, symbols[idx], p)
				outcomes <- outcome{idx: idx, result: result, err: err}
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

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	ordered := make([]*Result, len(symbols))
	errsByIdx := make([]error, len(symbols))
	for out := range outcomes {
		ordered[out.idx] = out.result
		errsByIdx[out.idx] = out.err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	results := make([]*Result, 0, len(symbols))
	failures := make([]SymbolError, 0)
	for idx := range symbols {
		switch {
		case errsByIdx[idx] != nil:
			failures = append(failures, SymbolError{Symbol: symbols[idx], Error: errsByIdx[idx].Error()})
			r.logger.WithFields(logrus.Fields{
				"symbol": symbols[idx],
			}).WithError(errsByIdx[idx]).Warn("Backtest failed for symbol")
		case ordered[idx] != nil:
			results = append(results, ordered[idx])
		}
	}

	if len(results) == 0 {
		return nil, failures, fmt.Errorf("all %d symbols failed to backtest", len(symbols))
	}
	return results, failures, nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

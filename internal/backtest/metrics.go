package backtest

import (
	"fmt"
	"math"
	"strings"
)

// tradingDaysPerYear is the annualization base for Sharpe and CAGR.
const tradingDaysPerYear = 252

// computeMetrics derives the performance summary from the trade ledger and
// the per-bar equity curve. The curve is normalized to start at 1.0 before
// any return arithmetic; it is discarded afterwards.
func computeMetrics(symbol string, trades []TradeRecord, equity []float64, budget float64, tradingDays int) Metrics {
	m := Metrics{Symbol: strings.ToUpper(symbol), Trades: len(trades)}

	totalPnL := 0.0
	for _, tr := range trades {
		totalPnL += tr.PnL
	}
	m.TotalPnL = roundTo(totalPnL, 2)
	if budget > 0 {
		m.TotalReturn = roundTo(totalPnL/budget, 4)
	}

	returns := dailyReturns(equity)
	m.MaxDrawdown = roundTo(maxDrawdown(returns), 4)
	m.Sharpe = roundTo(sharpe(returns), 3)

	finalEquity := 1.0
	for _, r := range returns {
		finalEquity *= 1.0 + r
	}
	days := tradingDays
	if days < 1 {
		days = 1
	}
	years := float64(days) / tradingDaysPerYear
	if years > 0 && finalEquity > 0 {
		m.CAGR = roundTo(math.Pow(finalEquity, 1.0/years)-1.0, 4)
	} else {
		m.CAGR = m.TotalReturn
	}

	var wins, losses []float64
	for _, tr := range trades {
		if tr.PnL > 0 {
			wins = append(wins, tr.PnL)
		} else {
			losses = append(losses, tr.PnL)
		}
	}
	if len(trades) > 0 {
		m.WinRate = roundTo(float64(len(wins))/float64(len(trades)), 3)
	}
	m.AvgWin = roundTo(mean(wins), 2)
	m.AvgLoss = roundTo(mean(losses), 2)

	return m
}

// dailyReturns converts the raw equity samples into per-step simple returns
// over the curve normalized to start at 1.0.
func dailyReturns(equity []float64) []float64 {
	if len(equity) < 2 || equity[0] == 0 {
		return nil
	}
	start := equity[0]
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1] / start
		cur := equity[i] / start
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (cur-prev)/prev)
	}
	return returns
}

// maxDrawdown returns the maximum peak-to-current relative decline of the
// compounded return path.
func maxDrawdown(returns []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	cur := 1.0
	for _, r := range returns {
		cur *= 1.0 + r
		if cur > peak {
			peak = cur
		}
		if peak != 0 {
			dd := (peak - cur) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpe computes the annualized Sharpe ratio from daily simple returns
// using the population standard deviation. Fewer than two samples gives 0.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mu := mean(returns)
	variance := 0.0
	for _, r := range returns {
		d := r - mu
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(returns)))
	if sd == 0 {
		sd = 1e-9
	}
	return mu / sd * math.Sqrt(tradingDaysPerYear)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// summarize renders the human-readable result lines.
func summarize(m Metrics) []string {
	return []string{
		fmt.Sprintf("Trades %d", m.Trades),
		fmt.Sprintf("PnL $%.2f", m.TotalPnL),
		fmt.Sprintf("Ret %.1f%%", m.TotalReturn*100),
		fmt.Sprintf("CAGR %.1f%%", m.CAGR*100),
		fmt.Sprintf("DD %.1f%%", m.MaxDrawdown*100),
		fmt.Sprintf("Sharpe %.2f", m.Sharpe),
		fmt.Sprintf("Win %.1f%%", m.WinRate*100),
	}
}

package backtest

// Aggregate is the cross-symbol rollup of a multi-symbol run. Fields are
// pointers so an empty result set marshals without fabricated zeros.
type Aggregate struct {
	Symbols     []string `json:"symbols"`
	Trades      *float64 `json:"trades,omitempty"`
	TotalPnL    *float64 `json:"total_pnl,omitempty"`
	TotalReturn *float64 `json:"total_return,omitempty"`
	CAGR        *float64 `json:"cagr,omitempty"`
	MaxDrawdown *float64 `json:"max_drawdown,omitempty"`
	Sharpe      *float64 `json:"sharpe,omitempty"`
	WinRate     *float64 `json:"win_rate,omitempty"`
	AvgWin      *float64 `json:"avg_win,omitempty"`
	AvgLoss     *float64 `json:"avg_loss,omitempty"`
}

// AggregateResults rolls per-symbol metrics up into one portfolio view.
// PnL sums, drawdown takes the worst symbol, and everything else averages,
// trade counts included.
func AggregateResults(results []*Result) Aggregate {
	agg := Aggregate{Symbols: make([]string, 0, len(results))}
	if len(results) == 0 {
		return agg
	}

	var trades, pnl, ret, cagr, dd, sh, win, avgW, avgL float64
	for _, res := range results {
		agg.Symbols = append(agg.Symbols, res.Symbol)
		m := res.Metrics
		trades += float64(m.Trades)
		pnl += m.TotalPnL
		ret += m.TotalReturn
		cagr += m.CAGR
		if m.MaxDrawdown > dd {
			dd = m.MaxDrawdown
		}
		sh += m.Sharpe
		win += m.WinRate
		avgW += m.AvgWin
		avgL += m.AvgLoss
	}

	n := float64(len(results))
	agg.Trades = ptr(roundTo(trades/n, 2))
	agg.TotalPnL = ptr(roundTo(pnl, 2))
	agg.TotalReturn = ptr(roundTo(ret/n, 4))
	agg.CAGR = ptr(roundTo(cagr/n, 4))
	agg.MaxDrawdown = ptr(roundTo(dd, 4))
	agg.Sharpe = ptr(roundTo(sh/n, 3))
	agg.WinRate = ptr(roundTo(win/n, 3))
	agg.AvgWin = ptr(roundTo(avgW/n, 2))
	agg.AvgLoss = ptr(roundTo(avgL/n, 2))
	return agg
}

func ptr(v float64) *float64 { return &v }

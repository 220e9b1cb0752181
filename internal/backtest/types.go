package backtest

import (
	"time"

	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
)

// Params configures one backtest run. Weights travel inside the params so
// runs never touch shared state and can execute concurrently.
type Params struct {
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Budget        float64        `json:"budget"`
	HoldDays      int            `json:"hold_days"`
	BuyThreshold  float64        `json:"buy_threshold"`
	SellThreshold float64        `json:"sell_threshold"`
	Weights       engine.Weights `json:"weights"`
}

// Exit reasons recorded on a closed trade.
const (
	ExitStop   = "stop"
	ExitTarget = "target"
	ExitTime   = "time"
)

// Position sides.
const (
	SideLong  = "long"
	SideShort = "short"
)

// TradeRecord is the immutable result of one closed position.
type TradeRecord struct {
	EntryDate string  `json:"entry_date"`
	ExitDate  string  `json:"exit_date"`
	Side      string  `json:"side"`
	Entry     float64 `json:"entry"`
	Exit      float64 `json:"exit"`
	Target    float64 `json:"target"`
	Stop      float64 `json:"stop"`
	Shares    int     `json:"shares"`
	PnL       float64 `json:"pnl"`
	Return    float64 `json:"ret"`
	Reason    string  `json:"reason"`
}

// Metrics is the read-only performance summary of one run.
type Metrics struct {
	Symbol      string  `json:"symbol"`
	Trades      int     `json:"trades"`
	TotalPnL    float64 `json:"total_pnl"`
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Sharpe      float64 `json:"sharpe"`
	WinRate     float64 `json:"win_rate"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
}

// Result bundles everything a single-symbol backtest produces.
type Result struct {
	Symbol  string        `json:"symbol"`
	Metrics Metrics       `json:"metrics"`
	Summary []string      `json:"summary"`
	Trades  []TradeRecord `json:"trades"`
}

// position is the transient in-run state between an open and a close. At
// most one exists per run.
type position struct {
	side     string
	entry    float64
	entryIdx int
	target   float64
	stop     float64
	atr      float64
	shares   int
}

func (p *position) unrealized(price float64) float64 {
	if p.side == SideLong {
		return float64(p.shares) * (price - p.entry)
	}
	return float64(p.shares) * (p.entry - price)
}

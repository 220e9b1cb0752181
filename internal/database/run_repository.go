package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
)

// DatabasePool is the subset of pgxpool.Pool the repositories use. It keeps
// the repositories testable against a mock pool.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// RunSummary is one persisted backtest run as listed back to callers.
type RunSummary struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Trades      int             `json:"trades"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	TotalReturn float64         `json:"total_return"`
	CAGR        float64         `json:"cagr"`
	MaxDrawdown float64         `json:"max_drawdown"`
	Sharpe      float64         `json:"sharpe"`
	WinRate     float64         `json:"win_rate"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RunRepository persists backtest runs and their trade ledgers.
type RunRepository struct {
	pool DatabasePool
}

// NewRunRepository creates a run repository over the given pool.
func NewRunRepository(pool DatabasePool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun stores a completed backtest run and its trades, returning the
// generated run id.
func (r *RunRepository) SaveRun(ctx context.Context, p backtest.Params, res *backtest.Result) (string, error) {
	id := uuid.NewString()

	weights, err := json.Marshal(p.Weights)
	if err != nil {
		return "", fmt.Errorf("failed to serialize weights: %w", err)
	}

	runQuery := `
		INSERT INTO backtest_runs (
			id, symbol, start_date, end_date, budget, hold_days,
			buy_threshold, sell_threshold, weights,
			trades, total_pnl, total_return, cagr, max_drawdown, sharpe, win_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	m := res.Metrics
	_, err = r.pool.Exec(ctx, runQuery,
		id, m.Symbol, p.Start, p.End,
		decimal.NewFromFloat(p.Budget), p.HoldDays,
		p.BuyThreshold, p.SellThreshold, weights,
		m.Trades, decimal.NewFromFloat(m.TotalPnL), m.TotalReturn,
		m.CAGR, m.MaxDrawdown, m.Sharpe, m.WinRate,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert backtest run: %w", err)
	}

	tradeQuery := `
		INSERT INTO backtest_trades (
			run_id, seq, entry_date, exit_date, side,
			entry, exit, target, stop, shares, pnl, ret, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	for seq, tr := range res.Trades {
		_, err = r.pool.Exec(ctx, tradeQuery,
			id, seq, tr.EntryDate, tr.ExitDate, tr.Side,
			tr.Entry, tr.Exit, tr.Target, tr.Stop, tr.Shares,
			decimal.NewFromFloat(tr.PnL), tr.Return, tr.Reason,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert trade %d of run %s: %w", seq, id, err)
		}
	}

	return id, nil
}

// RecentRuns lists the latest persisted runs for a symbol, newest first. An
// empty symbol lists runs across all symbols.
func (r *RunRepository) RecentRuns(ctx context.Context, symbol string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, symbol, trades, total_pnl, total_return, cagr,
		       max_drawdown, sharpe, win_rate, created_at
		FROM backtest_runs
		WHERE ($1 = '' OR symbol = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0, limit)
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(
			&run.ID, &run.Symbol, &run.Trades, &run.TotalPnL, &run.TotalReturn,
			&run.CAGR, &run.MaxDrawdown, &run.Sharpe, &run.WinRate, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backtest runs: %w", err)
	}
	return runs, nil
}

// TradesForRun returns the ordered trade ledger of one persisted run.
func (r *RunRepository) TradesForRun(ctx context.Context, runID string) ([]backtest.TradeRecord, error) {
	query := `
		SELECT entry_date, exit_date, side, entry, exit, target, stop,
		       shares, pnl, ret, reason
		FROM backtest_trades
		WHERE run_id = $1
		ORDER BY seq
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for run %s: %w", runID, err)
	}
	defer rows.Close()

	var trades []backtest.TradeRecord
	for rows.Next() {
		var tr backtest.TradeRecord
		var pnl decimal.Decimal
		if err := rows.Scan(
			&tr.EntryDate, &tr.ExitDate, &tr.Side, &tr.Entry, &tr.Exit,
			&tr.Target, &tr.Stop, &tr.Shares, &pnl, &tr.Return, &tr.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade of run %s: %w", runID, err)
		}
		tr.PnL, _ = pnl.Float64()
		trades = append(trades, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades for run %s: %w", runID, err)
	}
	return trades, nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanbais13-gif/stackiq-go/internal/backtest"
	"github.com/ishanbais13-gif/stackiq-go/internal/engine"
)

// mockPoolAdapter bridges pgxmock.PgxPoolIface to the DatabasePool interface.
type mockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (m *mockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *mockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT %d", result.RowsAffected())), nil
}

func (m *mockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func newMockRepository(t *testing.T) (*RunRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRunRepository(&mockPoolAdapter{mock: mock}), mock
}

func sampleRun() (backtest.Params, *backtest.Result) {
	p := backtest.Params{
		Start:         time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Budget:        10_000,
		HoldDays:      15,
		BuyThreshold:  67,
		SellThreshold: 33,
		Weights:       engine.DefaultWeights(),
	}
	res := &backtest.Result{
		Symbol: "AAPL",
		Metrics: backtest.Metrics{
			Symbol: "AAPL", Trades: 2, TotalPnL: 120.5, TotalReturn: 0.012,
			CAGR: 0.013, MaxDrawdown: 0.04, Sharpe: 0.9, WinRate: 0.5,
		},
		Trades: []backtest.TradeRecord{
			{EntryDate: "2023-02-01", ExitDate: "2023-02-10", Side: backtest.SideLong, Entry: 150, Exit: 155, Target: 155, Stop: 145, Shares: 10, PnL: 50, Return: 0.0333, Reason: backtest.ExitTarget},
			{EntryDate: "2023-03-01", ExitDate: "2023-03-05", Side: backtest.SideLong, Entry: 160, Exit: 167.05, Target: 167.05, Stop: 152, Shares: 10, PnL: 70.5, Return: 0.0441, Reason: backtest.ExitTarget},
		},
	}
	return p, res
}

func TestSaveRunPersistsRunAndTrades(t *testing.T) {
	repo, mock := newMockRepository(t)
	p, res := sampleRun()

	mock.ExpectExec("INSERT INTO backtest_runs").
		WithArgs(pgxmock.AnyArg(), "AAPL", p.Start, p.End,
			decimal.NewFromFloat(p.Budget), p.HoldDays,
			p.BuyThreshold, p.SellThreshold, pgxmock.AnyArg(),
			2, decimal.NewFromFloat(120.5), 0.012, 0.013, 0.04, 0.9, 0.5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for seq, tr := range res.Trades {
		mock.ExpectExec("INSERT INTO backtest_trades").
			WithArgs(pgxmock.AnyArg(), seq, tr.EntryDate, tr.ExitDate, tr.Side,
				tr.Entry, tr.Exit, tr.Target, tr.Stop, tr.Shares,
				decimal.NewFromFloat(tr.PnL), tr.Return, tr.Reason).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	id, err := repo.SaveRun(context.Background(), p, res)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunInsertFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	p, res := sampleRun()

	mock.ExpectExec("INSERT INTO backtest_runs").
		WillReturnError(errors.New("relation does not exist"))

	_, err := repo.SaveRun(context.Background(), p, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert backtest run")
}

func TestRecentRuns(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{
		"id", "symbol", "trades", "total_pnl", "total_return", "cagr",
		"max_drawdown", "sharpe", "win_rate", "created_at",
	}).AddRow(
		"run-1", "AAPL", 4, decimal.NewFromFloat(200.0), 0.02, 0.05,
		0.1, 1.1, 0.75, created,
	)
	mock.ExpectQuery("SELECT id, symbol, trades").
		WithArgs("AAPL", 10).
		WillReturnRows(rows)

	runs, err := repo.RecentRuns(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 4, runs[0].Trades)
	assert.True(t, runs[0].TotalPnL.Equal(decimal.NewFromFloat(200.0)))
	assert.Equal(t, created, runs[0].CreatedAt)
}

func TestRecentRunsDefaultLimit(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT id, symbol, trades").
		WithArgs("", 20).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "symbol", "trades", "total_pnl", "total_return", "cagr",
			"max_drawdown", "sharpe", "win_rate", "created_at",
		}))

	runs, err := repo.RecentRuns(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradesForRun(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := pgxmock.NewRows([]string{
		"entry_date", "exit_date", "side", "entry", "exit", "target", "stop",
		"shares", "pnl", "ret", "reason",
	}).AddRow(
		"2023-02-01", "2023-02-10", backtest.SideLong, 150.0, 155.0, 155.0, 145.0,
		10, decimal.NewFromFloat(50.0), 0.0333, backtest.ExitTarget,
	)
	mock.ExpectQuery("SELECT entry_date, exit_date").
		WithArgs("run-1").
		WillReturnRows(rows)

	trades, err := repo.TradesForRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, backtest.SideLong, trades[0].Side)
	assert.Equal(t, 50.0, trades[0].PnL)
	assert.Equal(t, backtest.ExitTarget, trades[0].Reason)
}
package database

import "context"

// schema holds the persistence DDL. Applied idempotently at startup so a
// fresh database works without a separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id UUID PRIMARY KEY,
	symbol TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	budget NUMERIC(18,2) NOT NULL,
	hold_days INT NOT NULL,
	buy_threshold DOUBLE PRECISION NOT NULL,
	sell_threshold DOUBLE PRECISION NOT NULL,
	weights JSONB NOT NULL,
	trades INT NOT NULL,
	total_pnl NUMERIC(18,2) NOT NULL,
	total_return DOUBLE PRECISION NOT NULL,
	cagr DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	sharpe DOUBLE PRECISION NOT NULL,
	win_rate DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_backtest_runs_symbol_created
	ON backtest_runs (symbol, created_at DESC);

CREATE TABLE IF NOT EXISTS backtest_trades (
	run_id UUID NOT NULL REFERENCES backtest_runs (id) ON DELETE CASCADE,
	seq INT NOT NULL,
	entry_date DATE NOT NULL,
	exit_date DATE NOT NULL,
	side TEXT NOT NULL,
	entry DOUBLE PRECISION NOT NULL,
	exit DOUBLE PRECISION NOT NULL,
	target DOUBLE PRECISION NOT NULL,
	stop DOUBLE PRECISION NOT NULL,
	shares INT NOT NULL,
	pnl NUMERIC(18,2) NOT NULL,
	ret DOUBLE PRECISION NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// EnsureSchema creates the persistence tables when they do not exist yet.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}

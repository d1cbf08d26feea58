// Package database opens the PostgreSQL and SQLite backends of the results
// store and creates their schema.
package database

// SchemaVersion is the current results schema version
const SchemaVersion = 1

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS simulation_runs (
    id               TEXT PRIMARY KEY,
    run_date         TEXT NOT NULL,
    input_path       TEXT NOT NULL,
    stake_mode       TEXT NOT NULL,
    initial_bankroll REAL NOT NULL,
    final_bankroll   REAL NOT NULL,
    total_bets       INTEGER NOT NULL,
    total_staked     REAL NOT NULL,
    total_profit     REAL NOT NULL,
    max_drawdown     REAL NOT NULL,
    races_settled    INTEGER NOT NULL,
    races_skipped    INTEGER NOT NULL,
    interrupted      INTEGER NOT NULL DEFAULT 0,
    parameters       TEXT NOT NULL,
    summary          TEXT NOT NULL,
    bankroll_curve   TEXT NOT NULL,
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_simulation_runs_run_date ON simulation_runs(run_date);
`

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS simulation_runs (
    id               UUID PRIMARY KEY,
    run_date         TIMESTAMPTZ NOT NULL,
    input_path       TEXT NOT NULL,
    stake_mode       TEXT NOT NULL,
    initial_bankroll DOUBLE PRECISION NOT NULL,
    final_bankroll   DOUBLE PRECISION NOT NULL,
    total_bets       INTEGER NOT NULL,
    total_staked     DOUBLE PRECISION NOT NULL,
    total_profit     DOUBLE PRECISION NOT NULL,
    max_drawdown     DOUBLE PRECISION NOT NULL,
    races_settled    INTEGER NOT NULL,
    races_skipped    INTEGER NOT NULL,
    interrupted      BOOLEAN NOT NULL DEFAULT FALSE,
    parameters       JSONB NOT NULL,
    summary          JSONB NOT NULL,
    bankroll_curve   JSONB NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_simulation_runs_run_date ON simulation_runs(run_date DESC);
`

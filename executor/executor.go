// Package executor adapts the query builder's compiled SQL and parameter
// lists to an underlying connection: either the shared pool or a pinned
// transaction. Both share the same narrow contract so the builder never
// needs to know which one it is talking to.
package executor

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Row is one result row, keyed by column name. Values come back exactly as
// the underlying driver returns them (e.g. DECIMAL columns commonly surface
// as []byte); callers that need normalized numerics should expect the
// query builder's own post-processing to have handled the columns it knows
// about (aggregate aliases) and do their own conversion for everything
// else.
type Row map[string]any

// QueryResult is the outcome of a SELECT.
type QueryResult struct {
	Rows []Row
}

// MutateResult is the outcome of an INSERT/UPDATE/UPSERT/DELETE.
type MutateResult struct {
	InsertID     int64
	HasInsertID  bool
	AffectedRows int64
}

// Executor is the narrow interface the query builder compiles against. It
// is satisfied by both a pool-backed and a transaction-backed adapter.
type Executor interface {
	Query(ctx context.Context, sqlText string, params []any) (*QueryResult, error)
	Mutate(ctx context.Context, sqlText string, params []any) (*MutateResult, error)
}

// extContext is the subset of sqlx.DB/sqlx.Tx this package depends on.
type extContext interface {
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlxExecutor struct {
	ext           extContext
	mode          string
	slowThreshold time.Duration
}

// NewPool wraps a *sqlx.DB (the shared connection pool) as an Executor.
func NewPool(db *sqlx.DB) Executor {
	return &sqlxExecutor{ext: db, mode: "pool", slowThreshold: 200 * time.Millisecond}
}

// NewTx wraps a *sqlx.Tx (a single pinned transaction) as an Executor.
func NewTx(tx *sqlx.Tx) Executor {
	return &sqlxExecutor{ext: tx, mode: "tx", slowThreshold: 200 * time.Millisecond}
}

func (e *sqlxExecutor) Query(ctx context.Context, sqlText string, params []any) (*QueryResult, error) {
	start := time.Now()
	rows, err := e.ext.QueryxContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result QueryResult
	for rows.Next() {
		row := make(Row)
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.logSlow(ctx, sqlText, time.Since(start))
	return &result, nil
}

func (e *sqlxExecutor) Mutate(ctx context.Context, sqlText string, params []any) (*MutateResult, error) {
	start := time.Now()
	res, err := e.ext.ExecContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	e.logSlow(ctx, sqlText, time.Since(start))

	mr := &MutateResult{}
	if n, err := res.RowsAffected(); err == nil {
		mr.AffectedRows = n
	}
	if id, err := res.LastInsertId(); err == nil {
		mr.InsertID = id
		mr.HasInsertID = true
	}
	return mr, nil
}

func (e *sqlxExecutor) logSlow(ctx context.Context, sqlText string, d time.Duration) {
	if e.slowThreshold <= 0 || d < e.slowThreshold {
		return
	}
	slog.DebugContext(ctx, "slow query", "mode", e.mode, "duration", d, "sql", sqlText)
}

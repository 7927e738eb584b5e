// Package querybuilder implements a fluent, parameterized query builder for
// a MySQL-compatible dialect: predicate composition (including correlated
// EXISTS and aggregate subqueries), two-pass eager loading of relations
// with composite foreign-key support, aggregate-alias filter rewriting,
// offset- and key-based chunked iteration, and transaction coordination.
//
// A Builder is bound to exactly one table and one executor.Executor for its
// whole lifetime. Every terminal operation (Get, First, Value, Count,
// Execute, Delete, Chunk, ChunkByID) resets the builder back to the state
// it had immediately after construction; a builder is not meant to be
// reused concurrently or relied upon after a terminal call beyond that
// reset baseline.
package querybuilder

import (
	"context"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

// Builder accumulates a single pending statement against one table. It is
// cheap to construct and cheap to discard.
type Builder struct {
	exec executor.Executor
	q    *query

	// err latches the first validation failure raised by any DSL call.
	// Every subsequent DSL call becomes a no-op once err is set, and every
	// terminal operation returns err immediately without compiling or
	// touching the executor. This gives the same "fails before any SQL is
	// emitted" guarantee a throwing constructor would, without forcing
	// every fluent method to return (*Builder, error).
	err error

	// lastParams holds the parameter list produced by the most recent
	// ToSQL call, for GetParameters.
	lastParams []any
}

// New constructs a Builder bound to table and exec, in the Fresh state: no
// projection (defaults to *), no predicates, no joins, no limit/offset.
func New(table string, exec executor.Executor) (*Builder, error) {
	if err := identifier.Validate(table, "FROM"); err != nil {
		return nil, err
	}
	return &Builder{exec: exec, q: freshQuery(table)}, nil
}

// reset returns the builder to the Fresh state for its own table. It is
// called by every terminal operation, success or failure.
func (b *Builder) reset() {
	b.q = freshQuery(b.q.table)
	b.err = nil
	b.lastParams = nil
}

func (b *Builder) clone() *Builder {
	return &Builder{exec: b.exec, q: b.q.clone()}
}

// Clone returns an independent copy of the pending query bound to the same
// executor. Unlike the terminal operations, Clone does not reset the
// receiver and is itself not a terminal operation.
func (b *Builder) Clone() *Builder {
	return b.clone()
}

// Err returns the first validation error latched by a DSL call, if any,
// without resetting or executing anything. Terminal operations surface the
// same error; this accessor exists for callers that want to check after a
// long fluent chain before deciding whether to call a terminal operation.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fetchRaw(ctx context.Context) ([]executor.Row, error) {
	sql, params, err := b.q.compileSelect()
	if err != nil {
		return nil, err
	}
	res, err := b.exec.Query(ctx, sql, params)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (b *Builder) fetchAndProcess(ctx context.Context) ([]executor.Row, error) {
	rows, err := b.fetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.postProcess(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

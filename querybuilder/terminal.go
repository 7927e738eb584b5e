package querybuilder

import (
	"context"
	"strconv"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

// Get runs the pending SELECT, post-processes the result (aggregate casts
// then relation hydration), resets the builder, and returns the rows.
func (b *Builder) Get(ctx context.Context) ([]executor.Row, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	defer b.reset()
	return b.fetchAndProcess(ctx)
}

// First is Get with an implicit LIMIT 1, returning the single row or nil if
// none matched.
func (b *Builder) First(ctx context.Context) (executor.Row, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	b.q.limit = intPtr(1)
	defer b.reset()
	rows, err := b.fetchAndProcess(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Value runs the pending SELECT narrowed to a single column (unless a
// projection was already set) and LIMIT 1, returning that column's value
// from the first row, or nil if no row matched.
func (b *Builder) Value(ctx context.Context, column string) (any, error) {
	if b.err == nil {
		if err := identifier.Validate(column, "VALUE"); err != nil {
			b.err = err
		}
	}
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	if len(b.q.projection) == 0 {
		b.q.projection = []string{column}
	}
	b.q.limit = intPtr(1)
	defer b.reset()
	rows, err := b.fetchAndProcess(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0][column], nil
}

// Count discards any projection/limit/offset and runs a SELECT COUNT(*)
// against the pending WHERE/joins, returning the scalar count.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return 0, err
	}
	b.q.projection = []string{"COUNT(*) AS aggregate_count"}
	b.q.limit = nil
	b.q.offset = nil
	defer b.reset()
	sql, params, err := b.q.compileSelect()
	if err != nil {
		return 0, err
	}
	res, err := b.exec.Query(ctx, sql, params)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	return toInt64(res.Rows[0]["aggregate_count"]), nil
}

// Execute runs the pending INSERT/UPDATE/UPSERT/DELETE and resets the
// builder. It fails with ErrNotMutation if no mutation has been set up
// (e.g. calling Execute on a builder that only ever had Where calls).
func (b *Builder) Execute(ctx context.Context) (*executor.MutateResult, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	if b.q.kind == kindSelect {
		b.reset()
		return nil, ErrNotMutation
	}
	defer b.reset()
	sql, params, err := b.q.compile()
	if err != nil {
		return nil, err
	}
	return b.exec.Mutate(ctx, sql, params)
}

// Delete marks the builder as a DELETE against its pending WHERE clause and
// executes it immediately.
func (b *Builder) Delete(ctx context.Context) (*executor.MutateResult, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	b.q.kind = kindDelete
	return b.Execute(ctx)
}

// ToSQL compiles the pending statement without executing it and without
// resetting the builder's AST. Calling it twice in a row on an unchanged
// builder returns the same string. GetParameters returns the parameter
// list from the most recent ToSQL call.
func (b *Builder) ToSQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	sql, params, err := b.q.compile()
	if err != nil {
		return "", err
	}
	b.lastParams = params
	return sql, nil
}

// GetParameters returns a copy of the parameter list built by the most
// recent ToSQL call, in emission order.
func (b *Builder) GetParameters() []any {
	return append([]any{}, b.lastParams...)
}

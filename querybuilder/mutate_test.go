package querybuilder_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/querybuilder"
)

func TestInsert_ColumnOrderIsDeterministic(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	sql, err := b.Insert(map[string]any{"name": "John", "status": "active"}).ToSQL()
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "INSERT INTO users (name, status) VALUES (?, ?)")
	c.Assert(b.GetParameters(), qt.DeepEquals, []any{"John", "active"})
}

func TestBulkInsert_MultipleRows(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	sql, err := b.BulkInsert([]map[string]any{
		{"name": "John", "status": "active"},
		{"name": "Jane", "status": "active"},
	}).ToSQL()
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "INSERT INTO users (name, status) VALUES (?, ?), (?, ?)")
	c.Assert(b.GetParameters(), qt.DeepEquals, []any{"John", "active", "Jane", "active"})
}

func TestBulkInsert_Empty_Fails(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	_, err := b.BulkInsert(nil).ToSQL()
	c.Assert(err, qt.ErrorIs, querybuilder.ErrEmptyBulkInsert)
}

func TestBulkInsert_MismatchedColumns_Fails(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	_, err := b.BulkInsert([]map[string]any{
		{"name": "John"},
		{"name": "Jane", "status": "active"},
	}).ToSQL()
	c.Assert(err, qt.ErrorIs, querybuilder.ErrBulkColumnMismatch)
}

func TestUpdate_WithWhere(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	sql, err := b.Update(map[string]any{"status": "inactive"}).Where("id", 7).ToSQL()
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "UPDATE users SET status = ? WHERE id = ?")
	c.Assert(b.GetParameters(), qt.DeepEquals, []any{"inactive", 7})
}

func TestUpdate_WithoutSet_Fails(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	_, err := b.Update(nil).ToSQL()
	c.Assert(err, qt.IsNotNil)
}

func TestUpsert_MissingUpdate_Fails(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "counters")

	_, err := b.Upsert(map[string]any{"name": "hits", "count": 1}, nil).ToSQL()
	c.Assert(err, qt.ErrorIs, querybuilder.ErrUpsertMissingUpdate)
}

func TestDelete_CompilesWherePredicate(t *testing.T) {
	c := qt.New(t)
	exec := &fakeExecutor{tables: map[string][]executor.Row{}}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	_, err = b.Where("id", 7).Delete(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(exec.mutations, qt.HasLen, 1)
	c.Assert(exec.mutations[0], qt.Equals, "DELETE FROM users WHERE id = ?")
	c.Assert(exec.mutParams[0], qt.DeepEquals, []any{7})
}

func TestExecute_OnSelectOnlyBuilder_FailsWithErrNotMutation(t *testing.T) {
	c := qt.New(t)
	b := newBuilder(c, "users")

	b.Where("id", 7)
	_, err := b.Execute(context.Background())
	c.Assert(err, qt.ErrorIs, querybuilder.ErrNotMutation)
}

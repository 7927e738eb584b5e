package querybuilder_test

import (
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/querybuilder"
)

// paginateExecutor answers a COUNT(*) projection with the fixture's total
// row count and otherwise behaves like offsetPagingExecutor, which is
// enough to drive Paginate's count-then-fetch sequence under test.
type paginateExecutor struct {
	rows    []executor.Row
	queries []string
}

func (e *paginateExecutor) Query(ctx context.Context, sqlText string, params []any) (*executor.QueryResult, error) {
	e.queries = append(e.queries, sqlText)
	if strings.Contains(sqlText, "COUNT(*)") {
		return &executor.QueryResult{Rows: []executor.Row{{"aggregate_count": int64(len(e.rows))}}}, nil
	}
	return (&offsetPagingExecutor{rows: e.rows}).Query(ctx, sqlText, params)
}

func (e *paginateExecutor) Mutate(_ context.Context, _ string, _ []any) (*executor.MutateResult, error) {
	return &executor.MutateResult{}, nil
}

func TestPaginate_SecondPageOfThree(t *testing.T) {
	c := qt.New(t)
	exec := &paginateExecutor{rows: makeUserRows(5)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	page, err := b.Paginate(context.Background(), 2, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(page.Total, qt.Equals, int64(5))
	c.Assert(page.TotalPages, qt.Equals, int64(3))
	c.Assert(page.Page, qt.Equals, 2)
	c.Assert(page.Rows, qt.HasLen, 2)
	c.Assert(page.Rows[0]["id"], qt.Equals, int64(3))
}

func TestPaginate_ClampsBelowOne(t *testing.T) {
	c := qt.New(t)
	exec := &paginateExecutor{rows: makeUserRows(3)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	page, err := b.Paginate(context.Background(), 0, -5)
	c.Assert(err, qt.IsNil)
	c.Assert(page.Page, qt.Equals, 1)
	c.Assert(page.PerPage, qt.Equals, 1)
}

func TestPaginate_DoesNotDisturbOriginalBuilderDuringCount(t *testing.T) {
	c := qt.New(t)
	exec := &paginateExecutor{rows: makeUserRows(4)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	_, err = b.Where("name", "user").Paginate(context.Background(), 1, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(exec.queries, qt.HasLen, 2)
	c.Assert(exec.queries[0], qt.Equals, "SELECT COUNT(*) AS aggregate_count FROM users WHERE name = ?")
	c.Assert(exec.queries[1], qt.Equals, "SELECT * FROM users WHERE name = ? LIMIT 2 OFFSET 0")
}

package querybuilder_test

import (
	"context"
	"strings"

	"github.com/denisvmedia/sqlbuilder/executor"
)

// fakeExecutor is a minimal in-memory stand-in for executor.Executor: it
// keys its fixture data by table name and ignores the WHERE/JOIN text
// entirely, returning every fixture row for whichever table the compiled
// SQL selects from. That's enough to exercise the hydrator's own
// grouping/attachment logic (the thing this test suite targets) without
// reimplementing a SQL engine; compiled WHERE/JOIN text itself is covered
// separately by the ToSQL-based compiler tests.
type fakeExecutor struct {
	tables    map[string][]executor.Row
	queries   []string
	mutations []string
	mutParams [][]any
}

func (f *fakeExecutor) Query(_ context.Context, sqlText string, _ []any) (*executor.QueryResult, error) {
	f.queries = append(f.queries, sqlText)
	rows := f.tables[tableFromSQL(sqlText)]
	out := make([]executor.Row, len(rows))
	for i, r := range rows {
		cp := executor.Row{}
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return &executor.QueryResult{Rows: out}, nil
}

func (f *fakeExecutor) Mutate(_ context.Context, sqlText string, params []any) (*executor.MutateResult, error) {
	f.mutations = append(f.mutations, sqlText)
	f.mutParams = append(f.mutParams, params)
	return &executor.MutateResult{}, nil
}

func tableFromSQL(sqlText string) string {
	fields := strings.Fields(sqlText)
	for i, f := range fields {
		if strings.EqualFold(f, "FROM") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

package querybuilder_test

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/querybuilder"
)

var limitRe = regexp.MustCompile(`LIMIT (\d+)`)
var offsetRe = regexp.MustCompile(`OFFSET (\d+)`)

// offsetPagingExecutor slices a fixed row set according to the LIMIT/OFFSET
// the compiled SQL carries, enough to drive Chunk's offset-pagination loop
// under test without a real database.
type offsetPagingExecutor struct {
	rows []executor.Row
}

func (e *offsetPagingExecutor) Query(_ context.Context, sqlText string, _ []any) (*executor.QueryResult, error) {
	limit := 0
	if m := limitRe.FindStringSubmatch(sqlText); m != nil {
		limit, _ = strconv.Atoi(m[1])
	}
	offset := 0
	if m := offsetRe.FindStringSubmatch(sqlText); m != nil {
		offset, _ = strconv.Atoi(m[1])
	}
	if offset > len(e.rows) {
		offset = len(e.rows)
	}
	end := offset + limit
	if end > len(e.rows) {
		end = len(e.rows)
	}
	out := append([]executor.Row{}, e.rows[offset:end]...)
	return &executor.QueryResult{Rows: out}, nil
}

func (e *offsetPagingExecutor) Mutate(_ context.Context, _ string, _ []any) (*executor.MutateResult, error) {
	return &executor.MutateResult{}, nil
}

// keysetPagingExecutor filters a fixed row set by "keyColumn > cursor",
// where cursor is the last bound parameter, enough to drive ChunkByID's
// seek-pagination loop under test.
type keysetPagingExecutor struct {
	rows      []executor.Row
	keyColumn string
}

func (e *keysetPagingExecutor) Query(_ context.Context, sqlText string, params []any) (*executor.QueryResult, error) {
	limit := 0
	if m := limitRe.FindStringSubmatch(sqlText); m != nil {
		limit, _ = strconv.Atoi(m[1])
	}
	var cursor int64 = -1
	if strings.Contains(sqlText, e.keyColumn+" >") && len(params) > 0 {
		cursor = toI64(params[len(params)-1])
	}
	var matched []executor.Row
	for _, r := range e.rows {
		if toI64(r[e.keyColumn]) > cursor {
			matched = append(matched, r)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return &executor.QueryResult{Rows: append([]executor.Row{}, matched...)}, nil
}

func (e *keysetPagingExecutor) Mutate(_ context.Context, _ string, _ []any) (*executor.MutateResult, error) {
	return &executor.MutateResult{}, nil
}

func toI64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func makeUserRows(n int) []executor.Row {
	rows := make([]executor.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = executor.Row{"id": int64(i + 1), "name": "user"}
	}
	return rows
}

// TestScenario6_Chunking mirrors spec scenario 6.
func TestScenario6_Chunking(t *testing.T) {
	c := qt.New(t)
	exec := &keysetPagingExecutor{rows: makeUserRows(5), keyColumn: "id"}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	var sizes []int
	err = b.ChunkByID(context.Background(), 2, "id", func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		sizes = append(sizes, len(rows))
		return querybuilder.ChunkContinue
	})
	c.Assert(err, qt.IsNil)
	c.Assert(sizes, qt.DeepEquals, []int{2, 2, 1})
}

func TestChunk_ExactMultiple_NoExtraCallback(t *testing.T) {
	c := qt.New(t)
	exec := &offsetPagingExecutor{rows: makeUserRows(4)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	calls := 0
	err = b.Chunk(context.Background(), 2, func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		calls++
		return querybuilder.ChunkContinue
	})
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 2)
}

func TestChunk_StopSignal(t *testing.T) {
	c := qt.New(t)
	exec := &offsetPagingExecutor{rows: makeUserRows(10)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	calls := 0
	err = b.Chunk(context.Background(), 2, func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		calls++
		return querybuilder.ChunkStop
	})
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 1)
}

func TestChunk_InvalidSize(t *testing.T) {
	c := qt.New(t)
	exec := &offsetPagingExecutor{rows: makeUserRows(1)}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	err = b.Chunk(context.Background(), 0, func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		return querybuilder.ChunkContinue
	})
	c.Assert(err, qt.ErrorIs, querybuilder.ErrInvalidChunkSize)
}

func TestChunkByID_NarrowedProjectionStripsBookkeepingColumn(t *testing.T) {
	c := qt.New(t)
	exec := &keysetPagingExecutor{rows: makeUserRows(3), keyColumn: "id"}

	b, err := querybuilder.New("users", exec)
	c.Assert(err, qt.IsNil)

	var seenKeys []bool
	err = b.Select("name").ChunkByID(context.Background(), 2, "id", func(rows []executor.Row, page int) querybuilder.ChunkSignal {
		for _, r := range rows {
			_, hasID := r["id"]
			seenKeys = append(seenKeys, hasID)
		}
		return querybuilder.ChunkContinue
	})
	c.Assert(err, qt.IsNil)
	for _, hasID := range seenKeys {
		c.Assert(hasID, qt.IsFalse)
	}
}

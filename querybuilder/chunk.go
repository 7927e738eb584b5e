package querybuilder

import (
	"context"
	"log/slog"

	"github.com/denisvmedia/sqlbuilder/executor"
	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

// ChunkSignal is returned by a Chunk/ChunkByID callback to control
// iteration.
type ChunkSignal int

const (
	// ChunkContinue requests the next page.
	ChunkContinue ChunkSignal = iota
	// ChunkStop ends iteration after the current page.
	ChunkStop
)

// Chunk drives repeated offset-paginated execution of the pending SELECT,
// invoking cb once per page with that page's post-processed rows and its
// zero-based page number. Iteration stops when cb returns ChunkStop, or
// when a page returns fewer than size rows (including zero), whichever
// comes first. Any pending LIMIT/OFFSET is overridden for the duration of
// the drive. The builder is always reset on return, success or failure.
func (b *Builder) Chunk(ctx context.Context, size int, cb func(rows []executor.Row, page int) ChunkSignal) error {
	if b.err != nil {
		err := b.err
		b.reset()
		return err
	}
	if _, err := identifier.ValidateNonNegativeInt(size, "CHUNK"); err != nil {
		b.reset()
		return err
	}
	if size == 0 {
		b.reset()
		return ErrInvalidChunkSize
	}

	table := b.q.table
	defer b.reset()

	for page := 0; ; page++ {
		b.q.limit = intPtr(size)
		b.q.offset = intPtr(page * size)

		rows, err := b.fetchAndProcess(ctx)
		if err != nil {
			return err
		}

		slog.DebugContext(ctx, "chunk page", "table", table, "page", page, "rows", len(rows))

		// A full page is ambiguous about whether more rows follow, so the
		// next iteration issues one more query to find out. That confirming
		// query commonly comes back empty; an empty page carries nothing for
		// the caller and is not itself a chunk, so cb is not invoked for it.
		if len(rows) == 0 {
			return nil
		}

		signal := cb(rows, page)

		if signal == ChunkStop {
			return nil
		}
		if len(rows) < size {
			return nil
		}
	}
}

// ChunkByID drives keyset (seek) pagination ordered by keyColumn ascending:
// each page filters keyColumn > the last page's maximum, avoiding the
// correctness problems offset pagination has under concurrent writes. If
// the pending ORDER BY does not already include keyColumn, it is appended.
// Semantics otherwise match Chunk.
func (b *Builder) ChunkByID(ctx context.Context, size int, keyColumn string, cb func(rows []executor.Row, page int) ChunkSignal) error {
	if b.err != nil {
		err := b.err
		b.reset()
		return err
	}
	if err := identifier.Validate(keyColumn, "CHUNK BY ID"); err != nil {
		b.reset()
		return err
	}
	if _, err := identifier.ValidateNonNegativeInt(size, "CHUNK BY ID"); err != nil {
		b.reset()
		return err
	}
	if size == 0 {
		b.reset()
		return ErrInvalidChunkSize
	}

	hasOrder := false
	for _, o := range b.q.orderBy {
		if o.column == keyColumn {
			hasOrder = true
			break
		}
	}
	if !hasOrder {
		b.q.orderBy = append(b.q.orderBy, orderSpec{column: keyColumn, dir: "ASC"})
	}

	var addedKeyCol string
	if len(b.q.projection) > 0 {
		present := false
		for _, c := range b.q.projection {
			if c == keyColumn || c == b.q.table+"."+keyColumn {
				present = true
				break
			}
		}
		if !present {
			b.q.projection = append(b.q.projection, b.q.table+"."+keyColumn)
			addedKeyCol = keyColumn
		}
	}

	table := b.q.table
	baseWhere := append([]node{}, b.q.where...)
	defer b.reset()

	var lastKey any
	haveLastKey := false

	for page := 0; ; page++ {
		b.q.where = append([]node{}, baseWhere...)
		if haveLastKey {
			b.q.where = append(b.q.where, node{kind: nodeCmp, conn: connAnd, column: keyColumn, op: ">", value: lastKey})
		}
		b.q.limit = intPtr(size)
		b.q.offset = nil

		rows, err := b.fetchAndProcess(ctx)
		if err != nil {
			return err
		}

		slog.DebugContext(ctx, "chunk by id page", "table", table, "page", page, "rows", len(rows))

		if len(rows) == 0 {
			return nil
		}

		lastKey = rows[len(rows)-1][keyColumn]
		haveLastKey = true

		if addedKeyCol != "" {
			stripColumns(rows, []string{addedKeyCol})
		}

		signal := cb(rows, page)

		if signal == ChunkStop {
			return nil
		}
		if len(rows) < size {
			return nil
		}
	}
}

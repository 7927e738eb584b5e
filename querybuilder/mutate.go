package querybuilder

import (
	"sort"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Insert marks the builder as a single-row INSERT. Column order in the
// emitted statement is deterministic (sorted), independent of Go's
// randomized map iteration order.
func (b *Builder) Insert(row map[string]any) *Builder {
	return b.bulkInsert([]map[string]any{row})
}

// BulkInsert marks the builder as a multi-row INSERT. Every row must share
// exactly the same set of column names.
func (b *Builder) BulkInsert(rows []map[string]any) *Builder {
	return b.bulkInsert(rows)
}

func (b *Builder) bulkInsert(rows []map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	if len(rows) == 0 {
		b.err = ErrEmptyBulkInsert
		return b
	}
	cols := sortedKeys(rows[0])
	if len(cols) == 0 {
		b.err = ErrEmptyBulkInsert
		return b
	}
	for _, c := range cols {
		if err := identifier.Validate(c, "INSERT"); err != nil {
			b.err = err
			return b
		}
	}
	values := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(cols) {
			b.err = ErrBulkColumnMismatch
			return b
		}
		vals := make([]any, len(cols))
		for j, c := range cols {
			v, ok := row[c]
			if !ok {
				b.err = ErrBulkColumnMismatch
				return b
			}
			vals[j] = v
		}
		values[i] = vals
	}
	b.q.kind = kindInsert
	b.q.insertColumns = cols
	b.q.insertRows = values
	return b
}

// Update marks the builder as an UPDATE with the given column assignments.
// It is typically followed by Where calls and a terminal Execute.
func (b *Builder) Update(set map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	cols := sortedKeys(set)
	assigns := make([]assignment, 0, len(cols))
	for _, c := range cols {
		if err := identifier.Validate(c, "UPDATE"); err != nil {
			b.err = err
			return b
		}
		assigns = append(assigns, assignment{column: c, value: set[c]})
	}
	b.q.kind = kindUpdate
	b.q.updateSet = assigns
	return b
}

// Upsert marks the builder as a single-row INSERT ... ON DUPLICATE KEY
// UPDATE. update's values may be Raw, e.g. to express
// "amount = amount + VALUES(amount)".
func (b *Builder) Upsert(row map[string]any, update map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	if len(update) == 0 {
		b.err = ErrUpsertMissingUpdate
		return b
	}
	b.bulkInsert([]map[string]any{row})
	if b.err != nil {
		return b
	}
	cols := sortedKeys(update)
	assigns := make([]assignment, 0, len(cols))
	for _, c := range cols {
		if err := identifier.Validate(c, "UPSERT"); err != nil {
			b.err = err
			return b
		}
		assigns = append(assigns, assignment{column: c, value: update[c]})
	}
	b.q.kind = kindUpsert
	b.q.upsertUpdate = assigns
	return b
}

package querybuilder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/denisvmedia/sqlbuilder/executor"
)

// postProcess runs the post-fetch passes common to every SELECT
// terminal: aggregate value normalization, then relation hydration, then
// stripping the columns the projection expander added to support
// hydration.
func (b *Builder) postProcess(ctx context.Context, rows []executor.Row) error {
	castAggregates(rows, b.q.aggregates)
	if err := hydrateRelations(ctx, b.exec, b.q.table, rows, b.q.relations); err != nil {
		return err
	}
	stripColumns(rows, b.q.autoAddedColumns)
	return nil
}

// toNumber converts the driver's textual/[]byte representation of an
// aggregate scalar (common for SUM/AVG over DECIMAL columns) into a Go
// numeric type, leaving anything it can't parse untouched.
func toNumber(v any) any {
	switch t := v.(type) {
	case []byte:
		return parseNumericString(string(t))
	case string:
		return parseNumericString(t)
	default:
		return v
	}
}

func parseNumericString(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func castAggregates(rows []executor.Row, aggs []aggregateSpec) {
	if len(aggs) == 0 {
		return
	}
	for _, row := range rows {
		for _, agg := range aggs {
			v, ok := row[agg.alias]
			if !ok || v == nil {
				continue
			}
			row[agg.alias] = toNumber(v)
		}
	}
}

func stripColumns(rows []executor.Row, cols []string) {
	if len(cols) == 0 {
		return
	}
	for _, row := range rows {
		for _, c := range cols {
			delete(row, c)
		}
	}
}

// normalizeKey collapses driver-representation differences (notably
// []byte vs string for the same logical value) so the same key compares
// equal whether it came from a parent row or a child row.
func normalizeKey(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func extractTuple(row executor.Row, keys []string) ([]any, bool) {
	tuple := make([]any, len(keys))
	for i, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			return nil, false
		}
		tuple[i] = v
	}
	return tuple, true
}

func tupleFingerprint(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = fmt.Sprintf("%v", normalizeKey(v))
	}
	return strings.Join(parts, "\x1f")
}

func emptyRelationValue(hasMany bool) any {
	if hasMany {
		return []executor.Row{}
	}
	return nil
}

func attachEmptyToAll(rows []executor.Row, name string, empty any) {
	for _, row := range rows {
		row[name] = empty
	}
}

// pushCompositeKeyDisjunction appends "(fk1 = ? AND fk2 = ? ...) OR (...)
// OR ..." wrapped in its own group, one clause per distinct parent key
// tuple collected for this relation.
func pushCompositeKeyDisjunction(sub *Builder, fk []string, tuples [][]any) {
	sub.q.where = append(sub.q.where, node{kind: nodeGroupStart, conn: connAnd})
	for i, tuple := range tuples {
		conn := connOr
		if i == 0 {
			conn = connAnd
		}
		var parts []string
		var params []any
		for j, col := range fk {
			parts = append(parts, fmt.Sprintf("%s = ?", col))
			params = append(params, tuple[j])
		}
		frag := "(" + strings.Join(parts, " AND ") + ")"
		sub.q.where = append(sub.q.where, node{kind: nodeRaw, conn: conn, rawSQL: frag, rawParams: params})
	}
	sub.q.where = append(sub.q.where, node{kind: nodeGroupEnd})
}

// ensureForeignKeysProjected adds any relation foreign-key column missing
// from a narrowed projection (one the relation's filter callback set
// explicitly), returning the columns it had to add so they can be stripped
// back out before the rows reach the caller.
func ensureForeignKeysProjected(sub *Builder, fk []string) []string {
	if len(sub.q.projection) == 0 {
		return nil
	}
	existing := map[string]bool{}
	for _, c := range sub.q.projection {
		existing[c] = true
	}
	var added []string
	for _, k := range fk {
		full := sub.q.table + "." + k
		if existing[k] || existing[full] {
			continue
		}
		sub.q.projection = append(sub.q.projection, full)
		existing[full] = true
		added = append(added, k)
	}
	return added
}

func hydrateRelations(ctx context.Context, exec executor.Executor, parentTable string, rows []executor.Row, relations []relationSpec) error {
	for _, rel := range relations {
		if err := hydrateOne(ctx, exec, parentTable, rows, rel); err != nil {
			return err
		}
	}
	return nil
}

// hydrateOne runs the two-query eager-load algorithm for a single
// registered relation: collect the distinct non-null parent key tuples,
// fetch every related row matching any of them in one query, recurse into
// that relation's own nested relations, then group and attach.
func hydrateOne(ctx context.Context, exec executor.Executor, parentTable string, rows []executor.Row, rel relationSpec) error {
	if len(rows) == 0 {
		return nil
	}

	empty := emptyRelationValue(rel.hasMany)

	seen := map[string]bool{}
	var tupleKeys [][]any
	for _, row := range rows {
		tuple, ok := extractTuple(row, rel.localKey)
		if !ok {
			continue
		}
		k := tupleFingerprint(tuple)
		if seen[k] {
			continue
		}
		seen[k] = true
		tupleKeys = append(tupleKeys, tuple)
	}

	if len(tupleKeys) == 0 {
		attachEmptyToAll(rows, rel.name, empty)
		return nil
	}

	sub, err := New(rel.relatedTable, exec)
	if err != nil {
		return err
	}

	if len(rel.foreignKey) == 1 {
		values := make([]any, len(tupleKeys))
		for i, t := range tupleKeys {
			values[i] = t[0]
		}
		sub.WhereIn(rel.foreignKey[0], values)
	} else {
		pushCompositeKeyDisjunction(sub, rel.foreignKey, tupleKeys)
	}

	if rel.filter != nil {
		rel.filter(sub)
		if sub.err != nil {
			return sub.err
		}
	}

	addedFKCols := ensureForeignKeysProjected(sub, rel.foreignKey)

	childRows, err := sub.fetchRaw(ctx)
	if err != nil {
		return err
	}

	castAggregates(childRows, sub.q.aggregates)
	if err := hydrateRelations(ctx, exec, rel.relatedTable, childRows, sub.q.relations); err != nil {
		return err
	}
	stripColumns(childRows, sub.q.autoAddedColumns)
	stripColumns(childRows, addedFKCols)

	groups := map[string][]executor.Row{}
	for _, child := range childRows {
		tuple, ok := extractTuple(child, rel.foreignKey)
		if !ok {
			continue
		}
		k := tupleFingerprint(tuple)
		groups[k] = append(groups[k], child)
	}

	for _, row := range rows {
		tuple, ok := extractTuple(row, rel.localKey)
		if !ok {
			row[rel.name] = empty
			continue
		}
		matches := groups[tupleFingerprint(tuple)]
		if rel.hasMany {
			if matches == nil {
				matches = []executor.Row{}
			}
			row[rel.name] = matches
		} else if len(matches) == 0 {
			row[rel.name] = nil
		} else {
			row[rel.name] = matches[0]
		}
	}

	return nil
}

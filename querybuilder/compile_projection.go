package querybuilder

import (
	"fmt"
	"strings"
)

// buildProjection expands the SELECT list: the caller's explicit
// projection (or "*"), then any relation local-key columns that need to be
// auto-added so the hydrator can match parent rows to their children, then
// one correlated-subquery column per registered aggregate.
func (q *query) buildProjection() (string, []any, error) {
	var params []any
	cols := append([]string{}, q.projection...)
	isStar := len(cols) == 0
	if isStar {
		cols = []string{"*"}
	}

	if !isStar && len(q.relations) > 0 {
		existing := map[string]bool{}
		for _, c := range cols {
			existing[c] = true
		}
		for i := range q.relations {
			rel := &q.relations[i]
			for _, k := range rel.localKey {
				full := q.table + "." + k
				if existing[full] || existing[k] {
					continue
				}
				cols = append(cols, full)
				existing[full] = true
				q.autoAddedColumns = append(q.autoAddedColumns, k)
			}
		}
	}

	if len(q.aggregates) > 0 {
		if isStar {
			cols = []string{q.table + ".*"}
		}
		for i := range q.aggregates {
			agg := &q.aggregates[i]
			subSQL, subParams, err := buildAggregateSubquerySQL(q.table, agg)
			if err != nil {
				return "", nil, err
			}
			cols = append(cols, fmt.Sprintf("(%s) AS %s", subSQL, agg.alias))
			params = append(params, subParams...)
		}
	}

	distinct := ""
	if q.distinct {
		distinct = "DISTINCT "
	}
	return distinct + strings.Join(cols, ", "), params, nil
}

// resolveAggregateAliasFilters rewrites any WHERE/HAVING comparison node
// whose column matches a registered aggregate alias into an
// AggregateSubquery comparison against that aggregate's correlated
// subquery. This runs once, right before WHERE/HAVING are emitted, so the
// rewrite applies regardless of whether WithAggregate was called before or
// after the matching Where/Having call.
func (q *query) resolveAggregateAliasFilters() error {
	if len(q.aggregates) == 0 {
		return nil
	}
	aliasIndex := map[string]*aggregateSpec{}
	for i := range q.aggregates {
		aliasIndex[q.aggregates[i].alias] = &q.aggregates[i]
	}

	rewrite := func(nodes []node) error {
		for i := range nodes {
			n := &nodes[i]
			if n.kind != nodeCmp || n.isNull {
				continue
			}
			agg, ok := aliasIndex[n.column]
			if !ok {
				continue
			}
			subSQL, subParams, err := buildAggregateSubquerySQL(q.table, agg)
			if err != nil {
				return err
			}
			*n = node{
				kind:      nodeAggSubquery,
				conn:      n.conn,
				op:        n.op,
				value:     n.value,
				rawSQL:    subSQL,
				rawParams: subParams,
			}
		}
		return nil
	}

	if err := rewrite(q.where); err != nil {
		return err
	}
	if err := rewrite(q.having); err != nil {
		return err
	}
	return nil
}

package querybuilder

import (
	"fmt"
	"strings"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

// Aggregate function kinds accepted by WithAggregate/WithAggregateKeys.
const (
	AggSum    = "SUM"
	AggCount  = "COUNT"
	AggAvg    = "AVG"
	AggMax    = "MAX"
	AggMin    = "MIN"
	AggCustom = "CUSTOM"
)

func autoAlias(relatedTable, kind, column string) string {
	if kind == AggCount {
		return relatedTable + "_count"
	}
	return fmt.Sprintf("%s_%s_%s", relatedTable, column, strings.ToLower(kind))
}

// WithAggregate registers a scalar correlated-aggregate projection column:
// a SUM/COUNT/AVG/MAX/MIN (or CUSTOM raw expression) over relatedTable,
// correlated on relatedTable.foreignKey = table.localKey, exposed under
// alias. An empty alias gets an auto-generated one
// ("<table>_<column>_<kind>", or "<table>_count" for AggCount). The filter
// callback, if given, adds further predicates against the correlated
// subquery (e.g. restricting a SUM to a status).
//
// A WHERE/HAVING predicate naming alias as its column is rewritten at
// compile time into a comparison against this same correlated subquery,
// regardless of call order relative to WithAggregate.
func (b *Builder) WithAggregate(kind, relatedTable, foreignKey, localKey, column, alias string, cb ...func(*Builder)) *Builder {
	return b.withAggregate(kind, relatedTable, []string{foreignKey}, []string{localKey}, column, alias, firstCB(cb))
}

// WithAggregateKeys is WithAggregate for a composite key.
func (b *Builder) WithAggregateKeys(kind, relatedTable string, foreignKey, localKey []string, column, alias string, cb ...func(*Builder)) *Builder {
	return b.withAggregate(kind, relatedTable, foreignKey, localKey, column, alias, firstCB(cb))
}

// WithSum, WithCount, WithAvg, WithMax and WithMin are single-key sugar
// over WithAggregate for each function kind. WithCustom takes a Raw
// expression instead of a column name, for aggregates the DSL cannot name
// directly (e.g. a CASE-based conditional sum).
func (b *Builder) WithSum(relatedTable, foreignKey, localKey, column, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggSum, relatedTable, foreignKey, localKey, column, alias, cb...)
}

func (b *Builder) WithCount(relatedTable, foreignKey, localKey, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggCount, relatedTable, foreignKey, localKey, "", alias, cb...)
}

func (b *Builder) WithAvg(relatedTable, foreignKey, localKey, column, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggAvg, relatedTable, foreignKey, localKey, column, alias, cb...)
}

func (b *Builder) WithMax(relatedTable, foreignKey, localKey, column, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggMax, relatedTable, foreignKey, localKey, column, alias, cb...)
}

func (b *Builder) WithMin(relatedTable, foreignKey, localKey, column, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggMin, relatedTable, foreignKey, localKey, column, alias, cb...)
}

func (b *Builder) WithCustom(relatedTable, foreignKey, localKey string, expr Raw, alias string, cb ...func(*Builder)) *Builder {
	return b.WithAggregate(AggCustom, relatedTable, foreignKey, localKey, expr.String(), alias, cb...)
}

func (b *Builder) withAggregate(kind, relatedTable string, fk, lk []string, column, alias string, cb func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(relatedTable, "AGGREGATE"); err != nil {
		b.err = err
		return b
	}
	if kind != AggCount && kind != AggCustom {
		if err := identifier.Validate(column, "AGGREGATE"); err != nil {
			b.err = err
			return b
		}
	}
	if len(fk) == 0 || len(fk) != len(lk) {
		b.err = ErrKeyLengthMismatch
		return b
	}
	if alias == "" {
		alias = autoAlias(relatedTable, kind, column)
	}
	if err := identifier.Validate(alias, "AGGREGATE ALIAS"); err != nil {
		b.err = err
		return b
	}
	b.q.aggregates = append(b.q.aggregates, aggregateSpec{
		fn:           kind,
		relatedTable: relatedTable,
		foreignKey:   append([]string{}, fk...),
		localKey:     append([]string{}, lk...),
		expr:         column,
		alias:        alias,
		filter:       cb,
	})
	return b
}

func aggregateExpr(agg *aggregateSpec) string {
	switch agg.fn {
	case AggCount:
		return "COUNT(*)"
	case AggCustom:
		return agg.expr
	default:
		return fmt.Sprintf("%s(%s)", agg.fn, agg.expr)
	}
}

// buildAggregateSubquerySQL compiles the correlated scalar subquery behind
// one aggregate spec: SELECT <fn>(<col>) FROM related WHERE related.fk =
// parent.lk [AND <filter>].
func buildAggregateSubquerySQL(parentTable string, agg *aggregateSpec) (string, []any, error) {
	sub := freshQuery(agg.relatedTable)
	sub.projection = []string{aggregateExpr(agg)}
	if err := appendCorrelation(sub, parentTable, agg.relatedTable, agg.foreignKey, agg.localKey); err != nil {
		return "", nil, err
	}
	if agg.filter != nil {
		fb := &Builder{q: sub}
		agg.filter(fb)
		if fb.err != nil {
			return "", nil, fb.err
		}
	}
	return sub.compileSelect()
}

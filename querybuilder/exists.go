package querybuilder

import "github.com/denisvmedia/sqlbuilder/internal/identifier"

func firstCB(cbs []func(*Builder)) func(*Builder) {
	if len(cbs) == 0 {
		return nil
	}
	return cbs[0]
}

// appendCorrelation pushes the AND-joined equality predicates that tie a
// correlated subquery's table back to its parent: related.fk[i] = parent.lk[i].
func appendCorrelation(sub *query, parentTable, relatedTable string, fk, lk []string) error {
	if len(fk) == 0 || len(fk) != len(lk) {
		return ErrKeyLengthMismatch
	}
	for i := range fk {
		col := relatedTable + "." + fk[i]
		ref := parentTable + "." + lk[i]
		sub.where = append(sub.where, node{kind: nodeCmp, conn: connAnd, column: col, op: "=", value: Raw{expr: ref}})
	}
	return nil
}

// pushExists builds a correlated EXISTS/NOT EXISTS subquery against
// relatedTable, runs cb against it if given, compiles it eagerly, and
// appends the resulting node to the receiver's WHERE clause.
func (b *Builder) pushExists(conn connective, negated bool, relatedTable string, fk, lk []string, cb func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(relatedTable, "EXISTS"); err != nil {
		b.err = err
		return b
	}
	sub := freshQuery(relatedTable)
	sub.projection = []string{"1"}
	if err := appendCorrelation(sub, b.q.table, relatedTable, fk, lk); err != nil {
		b.err = err
		return b
	}
	if cb != nil {
		sb := &Builder{exec: b.exec, q: sub}
		cb(sb)
		if sb.err != nil {
			b.err = sb.err
			return b
		}
	}
	subSQL, subParams, err := sub.compileSelect()
	if err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeExists, conn: conn, negated: negated, rawSQL: subSQL, rawParams: subParams})
	return b
}

// pushCountCompare builds a correlated COUNT(*) subquery against
// relatedTable and appends an AggregateSubquery comparison node: (SELECT
// COUNT(*) ...) op n.
func (b *Builder) pushCountCompare(conn connective, relatedTable string, fk, lk []string, op string, n int, cb func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(relatedTable, "HAS"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.ValidateOperator(op, columnOperators, "HAS"); err != nil {
		b.err = err
		return b
	}
	sub := freshQuery(relatedTable)
	sub.projection = []string{"COUNT(*)"}
	if err := appendCorrelation(sub, b.q.table, relatedTable, fk, lk); err != nil {
		b.err = err
		return b
	}
	if cb != nil {
		sb := &Builder{exec: b.exec, q: sub}
		cb(sb)
		if sb.err != nil {
			b.err = sb.err
			return b
		}
	}
	subSQL, subParams, err := sub.compileSelect()
	if err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeAggSubquery, conn: conn, op: op, value: n, rawSQL: subSQL, rawParams: subParams})
	return b
}

// WhereHas adds a correlated EXISTS predicate against relatedTable, joined
// on relatedTable.fk = builder's table.lk, AND-joined to prior context. cb
// is optional and may add further filters against the correlated subquery.
func (b *Builder) WhereHas(relatedTable, fk, lk string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connAnd, false, relatedTable, []string{fk}, []string{lk}, firstCB(cb))
}

// OrWhereHas is the OR-joined sibling of WhereHas.
func (b *Builder) OrWhereHas(relatedTable, fk, lk string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connOr, false, relatedTable, []string{fk}, []string{lk}, firstCB(cb))
}

// WhereDoesntHave is WhereHas with NOT EXISTS.
func (b *Builder) WhereDoesntHave(relatedTable, fk, lk string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connAnd, true, relatedTable, []string{fk}, []string{lk}, firstCB(cb))
}

// OrWhereDoesntHave is the OR-joined sibling of WhereDoesntHave.
func (b *Builder) OrWhereDoesntHave(relatedTable, fk, lk string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connOr, true, relatedTable, []string{fk}, []string{lk}, firstCB(cb))
}

// WhereHasKeys is WhereHas for a composite foreign key.
func (b *Builder) WhereHasKeys(relatedTable string, fk, lk []string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connAnd, false, relatedTable, fk, lk, firstCB(cb))
}

// OrWhereHasKeys is OrWhereHas for a composite foreign key.
func (b *Builder) OrWhereHasKeys(relatedTable string, fk, lk []string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connOr, false, relatedTable, fk, lk, firstCB(cb))
}

// WhereDoesntHaveKeys is WhereDoesntHave for a composite foreign key.
func (b *Builder) WhereDoesntHaveKeys(relatedTable string, fk, lk []string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connAnd, true, relatedTable, fk, lk, firstCB(cb))
}

// OrWhereDoesntHaveKeys is OrWhereDoesntHave for a composite foreign key.
func (b *Builder) OrWhereDoesntHaveKeys(relatedTable string, fk, lk []string, cb ...func(*Builder)) *Builder {
	return b.pushExists(connOr, true, relatedTable, fk, lk, firstCB(cb))
}

// Has is shorthand for WhereHas with no filter callback: at least one
// related row must exist.
func (b *Builder) Has(relatedTable, fk, lk string) *Builder {
	return b.pushExists(connAnd, false, relatedTable, []string{fk}, []string{lk}, nil)
}

// HasWhere is Has with a filter callback against the correlated subquery.
func (b *Builder) HasWhere(relatedTable, fk, lk string, cb func(*Builder)) *Builder {
	return b.pushExists(connAnd, false, relatedTable, []string{fk}, []string{lk}, cb)
}

// HasCount compares the correlated related-row count against n using op
// (e.g. ">=", "="): WHERE (SELECT COUNT(*) ...) op ?.
func (b *Builder) HasCount(relatedTable, fk, lk, op string, n int) *Builder {
	return b.pushCountCompare(connAnd, relatedTable, []string{fk}, []string{lk}, op, n, nil)
}

// HasCountWhere is HasCount with a filter callback against the correlated
// subquery before the count is taken.
func (b *Builder) HasCountWhere(relatedTable, fk, lk, op string, n int, cb func(*Builder)) *Builder {
	return b.pushCountCompare(connAnd, relatedTable, []string{fk}, []string{lk}, op, n, cb)
}

package querybuilder

import (
	"strings"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

var cmpOperators = []string{"=", "!=", "<>", ">", "<", ">=", "<=", "LIKE", "NOT LIKE"}
var columnOperators = []string{"=", "!=", "<>", ">", "<", ">=", "<="}

// Where adds an AND-joined equality predicate: WHERE column = ?.
func (b *Builder) Where(column string, value any) *Builder {
	return b.whereOp(connAnd, column, "=", value)
}

// WhereOp adds an AND-joined predicate with an explicit operator.
func (b *Builder) WhereOp(column, op string, value any) *Builder {
	return b.whereOp(connAnd, column, op, value)
}

// OrWhere is the OR-joined sibling of Where.
func (b *Builder) OrWhere(column string, value any) *Builder {
	return b.whereOp(connOr, column, "=", value)
}

// OrWhereOp is the OR-joined sibling of WhereOp.
func (b *Builder) OrWhereOp(column, op string, value any) *Builder {
	return b.whereOp(connOr, column, op, value)
}

func (b *Builder) whereOp(conn connective, column, op string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "WHERE"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.ValidateOperator(op, cmpOperators, "WHERE"); err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeCmp, conn: conn, column: column, op: op, value: value})
	return b
}

func (b *Builder) WhereNull(column string) *Builder    { return b.whereNull(connAnd, column, "IS") }
func (b *Builder) OrWhereNull(column string) *Builder  { return b.whereNull(connOr, column, "IS") }
func (b *Builder) WhereNotNull(column string) *Builder { return b.whereNull(connAnd, column, "IS NOT") }
func (b *Builder) OrWhereNotNull(column string) *Builder {
	return b.whereNull(connOr, column, "IS NOT")
}

func (b *Builder) whereNull(conn connective, column, op string) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "WHERE"); err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeCmp, conn: conn, column: column, op: op, isNull: true})
	return b
}

func (b *Builder) WhereIn(column string, values []any) *Builder {
	return b.whereIn(connAnd, column, values, false)
}
func (b *Builder) OrWhereIn(column string, values []any) *Builder {
	return b.whereIn(connOr, column, values, false)
}
func (b *Builder) WhereNotIn(column string, values []any) *Builder {
	return b.whereIn(connAnd, column, values, true)
}
func (b *Builder) OrWhereNotIn(column string, values []any) *Builder {
	return b.whereIn(connOr, column, values, true)
}

func (b *Builder) whereIn(conn connective, column string, values []any, negated bool) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "WHERE"); err != nil {
		b.err = err
		return b
	}
	if len(values) == 0 {
		if negated {
			// NOT IN () is vacuously true: no node needed.
			return b
		}
		// IN () can never match; emit a literal false rather than bind an
		// empty placeholder list.
		b.q.where = append(b.q.where, node{kind: nodeRaw, conn: conn, rawSQL: "1 = 0"})
		return b
	}
	cp := append([]any{}, values...)
	b.q.where = append(b.q.where, node{kind: nodeIn, conn: conn, column: column, values: cp, negated: negated})
	return b
}

func (b *Builder) WhereBetween(column string, lo, hi any) *Builder {
	return b.whereBetween(connAnd, column, lo, hi, false)
}
func (b *Builder) OrWhereBetween(column string, lo, hi any) *Builder {
	return b.whereBetween(connOr, column, lo, hi, false)
}
func (b *Builder) WhereNotBetween(column string, lo, hi any) *Builder {
	return b.whereBetween(connAnd, column, lo, hi, true)
}
func (b *Builder) OrWhereNotBetween(column string, lo, hi any) *Builder {
	return b.whereBetween(connOr, column, lo, hi, true)
}

func (b *Builder) whereBetween(conn connective, column string, lo, hi any, negated bool) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "WHERE"); err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeBetween, conn: conn, column: column, lo: lo, hi: hi, negated: negated})
	return b
}

// WhereColumn adds an AND-joined column-to-column comparison:
// WHERE lhs op rhs, with rhs spliced verbatim (no parameter).
func (b *Builder) WhereColumn(lhs, op, rhs string) *Builder {
	return b.whereColumn(connAnd, lhs, op, rhs)
}

// OrWhereColumn is the OR-joined sibling of WhereColumn.
func (b *Builder) OrWhereColumn(lhs, op, rhs string) *Builder {
	return b.whereColumn(connOr, lhs, op, rhs)
}

func (b *Builder) whereColumn(conn connective, lhs, op, rhs string) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(lhs, "WHERE"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.Validate(rhs, "WHERE"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.ValidateOperator(op, columnOperators, "WHERE"); err != nil {
		b.err = err
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeCmp, conn: conn, column: lhs, op: op, value: Raw{expr: rhs}})
	return b
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func wrapLike(escaped, side string) string {
	switch side {
	case "before":
		return "%" + escaped
	case "after":
		return escaped + "%"
	default:
		return "%" + escaped + "%"
	}
}

// Like adds an AND-joined LIKE predicate. side is "both" (the default for
// any other value), "before" (%value) or "after" (value%); value's own %, _
// and \ are escaped first so it always behaves as a literal substring
// match.
func (b *Builder) Like(column, value, side string) *Builder {
	return b.like(connAnd, column, value, side, false)
}
func (b *Builder) OrLike(column, value, side string) *Builder {
	return b.like(connOr, column, value, side, false)
}
func (b *Builder) NotLike(column, value, side string) *Builder {
	return b.like(connAnd, column, value, side, true)
}
func (b *Builder) OrNotLike(column, value, side string) *Builder {
	return b.like(connOr, column, value, side, true)
}

func (b *Builder) like(conn connective, column, value, side string, negated bool) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "WHERE"); err != nil {
		b.err = err
		return b
	}
	op := "LIKE"
	if negated {
		op = "NOT LIKE"
	}
	pattern := wrapLike(escapeLike(value), side)
	b.q.where = append(b.q.where, node{kind: nodeLike, conn: conn, column: column, op: op, value: pattern})
	return b
}

// Search emits one LIKE "%value%" per column: the first is joined to prior
// context with AND, the rest are OR-joined after it. The LIKE predicates are
// not wrapped in a group of their own, so SQL's usual AND-before-OR
// precedence applies to them and any prior predicates. OrSearch OR-joins the
// first column to prior context as well.
func (b *Builder) Search(columns []string, value string) *Builder {
	return b.search(connAnd, columns, value)
}
func (b *Builder) OrSearch(columns []string, value string) *Builder {
	return b.search(connOr, columns, value)
}

func (b *Builder) search(outerConn connective, columns []string, value string) *Builder {
	if b.err != nil {
		return b
	}
	if len(columns) == 0 {
		b.err = ErrEmptySearchColumns
		return b
	}
	pattern := wrapLike(escapeLike(value), "both")
	for i, col := range columns {
		if err := identifier.Validate(col, "SEARCH"); err != nil {
			b.err = err
			return b
		}
		conn := connOr
		if i == 0 {
			conn = outerConn
		}
		b.q.where = append(b.q.where, node{kind: nodeLike, conn: conn, column: col, op: "LIKE", value: pattern})
	}
	return b
}

// Group brackets the predicates cb adds against the same builder inside a
// parenthesized, AND-joined-to-prior-context scope. OrGroup OR-joins the
// whole bracketed scope to prior context instead. Either way, connectives
// used inside cb are relative only to the group's own scope.
func (b *Builder) Group(cb func(*Builder)) *Builder   { return b.group(connAnd, cb) }
func (b *Builder) OrGroup(cb func(*Builder)) *Builder { return b.group(connOr, cb) }

func (b *Builder) group(conn connective, cb func(*Builder)) *Builder {
	if b.err != nil {
		return b
	}
	if cb == nil {
		b.err = ErrMissingCallback
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeGroupStart, conn: conn})
	cb(b)
	if b.err != nil {
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeGroupEnd})
	return b
}

// WhereRaw splices fragment into the WHERE clause verbatim, AND-joined to
// prior context, binding params in order at the `?` placeholders it
// contains. Unlike Raw, params here are real bound parameters — this is an
// escape hatch for expressions the predicate DSL cannot express, not a
// parameterization bypass.
func (b *Builder) WhereRaw(fragment string, params ...any) *Builder {
	return b.whereRaw(connAnd, fragment, params)
}

// OrWhereRaw is the OR-joined sibling of WhereRaw.
func (b *Builder) OrWhereRaw(fragment string, params ...any) *Builder {
	return b.whereRaw(connOr, fragment, params)
}

func (b *Builder) whereRaw(conn connective, fragment string, params []any) *Builder {
	if b.err != nil {
		return b
	}
	if fragment == "" {
		b.err = ErrEmptyRaw
		return b
	}
	b.q.where = append(b.q.where, node{kind: nodeRaw, conn: conn, rawSQL: fragment, rawParams: append([]any{}, params...)})
	return b
}

// Having, HavingOp, OrHaving and OrHavingOp mirror their Where counterparts
// but append to the HAVING clause instead, which does not support nested
// groups or EXISTS subqueries.
func (b *Builder) Having(column string, value any) *Builder {
	return b.havingOp(connAnd, column, "=", value)
}
func (b *Builder) HavingOp(column, op string, value any) *Builder {
	return b.havingOp(connAnd, column, op, value)
}
func (b *Builder) OrHaving(column string, value any) *Builder {
	return b.havingOp(connOr, column, "=", value)
}
func (b *Builder) OrHavingOp(column, op string, value any) *Builder {
	return b.havingOp(connOr, column, op, value)
}

func (b *Builder) havingOp(conn connective, column, op string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "HAVING"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.ValidateOperator(op, cmpOperators, "HAVING"); err != nil {
		b.err = err
		return b
	}
	b.q.having = append(b.q.having, node{kind: nodeCmp, conn: conn, column: column, op: op, value: value})
	return b
}

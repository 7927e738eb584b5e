package querybuilder

import (
	"strings"

	"github.com/denisvmedia/sqlbuilder/internal/identifier"
)

// Select sets the projection explicitly. Without a call to Select, the
// builder projects "*". Calling Select again replaces the prior
// projection.
func (b *Builder) Select(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if err := identifier.Validate(c, "SELECT"); err != nil {
			b.err = err
			return b
		}
	}
	b.q.projection = append([]string{}, columns...)
	return b
}

// Distinct sets SELECT DISTINCT.
func (b *Builder) Distinct() *Builder {
	if b.err != nil {
		return b
	}
	b.q.distinct = true
	return b
}

// GroupBy appends to the GROUP BY clause.
func (b *Builder) GroupBy(columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, c := range columns {
		if err := identifier.Validate(c, "GROUP BY"); err != nil {
			b.err = err
			return b
		}
	}
	b.q.groupBy = append(b.q.groupBy, columns...)
	return b
}

// OrderBy appends one ORDER BY term. dir is case-insensitive "asc"/"desc".
func (b *Builder) OrderBy(column, dir string) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(column, "ORDER BY"); err != nil {
		b.err = err
		return b
	}
	d, err := identifier.ValidateDirection(dir)
	if err != nil {
		b.err = err
		return b
	}
	b.q.orderBy = append(b.q.orderBy, orderSpec{column: column, dir: d})
	return b
}

// Limit sets the row limit. n must be non-negative.
func (b *Builder) Limit(n int) *Builder {
	if b.err != nil {
		return b
	}
	v, err := identifier.ValidateNonNegativeInt(n, "LIMIT")
	if err != nil {
		b.err = err
		return b
	}
	b.q.limit = &v
	return b
}

// Offset sets the row offset. n must be non-negative. Offset without a
// Limit is accepted but not emitted: the OFFSET clause is only compiled
// alongside a LIMIT clause, as MySQL's grammar requires.
func (b *Builder) Offset(n int) *Builder {
	if b.err != nil {
		return b
	}
	v, err := identifier.ValidateNonNegativeInt(n, "OFFSET")
	if err != nil {
		b.err = err
		return b
	}
	b.q.offset = &v
	return b
}

var joinKinds = []string{"INNER", "LEFT", "RIGHT"}

// Join adds a join clause. kind defaults to "INNER" when omitted; on is
// spliced into the ON clause uninterpreted, matching the contract that the
// builder does not parse join expressions.
func (b *Builder) Join(table, on string, kind ...string) *Builder {
	return b.join(table, on, joinKindOf(kind), false)
}

// JoinChecked is Join plus a conservative scan of on for semicolons and SQL
// comment markers, for callers who want a defense-in-depth check without a
// full expression parser.
func (b *Builder) JoinChecked(table, on string, kind ...string) *Builder {
	return b.join(table, on, joinKindOf(kind), true)
}

func joinKindOf(kind []string) string {
	if len(kind) > 0 {
		return strings.ToUpper(kind[0])
	}
	return "INNER"
}

func (b *Builder) join(table, on, kind string, checked bool) *Builder {
	if b.err != nil {
		return b
	}
	if err := identifier.Validate(table, "JOIN"); err != nil {
		b.err = err
		return b
	}
	if err := identifier.ValidateOperator(kind, joinKinds, "JOIN"); err != nil {
		b.err = err
		return b
	}
	if on == "" {
		b.err = ErrEmptyJoinCondition
		return b
	}
	if checked {
		if err := scanJoinCondition(on); err != nil {
			b.err = err
			return b
		}
	}
	b.q.joins = append(b.q.joins, joinSpec{table: table, on: on, kind: kind})
	return b
}

func scanJoinCondition(on string) error {
	if strings.ContainsAny(on, ";") || strings.Contains(on, "--") || strings.Contains(on, "/*") {
		return ErrUnsafeJoinCondition
	}
	return nil
}

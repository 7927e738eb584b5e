package querybuilder

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// selectSQLCache holds the assembled SQL text for SELECT statement shapes
// keyed by a structural fingerprint built from the already-parameterized
// fragments (projection, joins, WHERE, GROUP BY, HAVING, ORDER BY,
// LIMIT/OFFSET). Since every scalar value is bound through a `?`
// placeholder, two calls with the same shape but different bound values
// produce byte-identical SQL text, so the cache saves the repeated
// strings.Builder/fmt.Sprintf assembly for query shapes that recur across
// requests (paginate and chunk looping the same shape with a moving
// offset, the same report query re-run for different callers).
var selectSQLCache, _ = lru.New[string, string](512)

func selectShapeKey(table, projSQL string, joins []joinSpec, whereSQL string, groupBy []string, havingSQL string, orderBy []orderSpec, limit, offset *int) string {
	var sb strings.Builder
	sb.WriteString(table)
	sb.WriteByte('\x00')
	sb.WriteString(projSQL)
	sb.WriteByte('\x00')
	for _, j := range joins {
		sb.WriteString(j.kind)
		sb.WriteByte(' ')
		sb.WriteString(j.table)
		sb.WriteByte(' ')
		sb.WriteString(j.on)
		sb.WriteByte('\x1f')
	}
	sb.WriteByte('\x00')
	sb.WriteString(whereSQL)
	sb.WriteByte('\x00')
	sb.WriteString(strings.Join(groupBy, ","))
	sb.WriteByte('\x00')
	sb.WriteString(havingSQL)
	sb.WriteByte('\x00')
	for _, o := range orderBy {
		sb.WriteString(o.column)
		sb.WriteByte(' ')
		sb.WriteString(o.dir)
		sb.WriteByte('\x1f')
	}
	sb.WriteByte('\x00')
	if limit != nil {
		fmt.Fprintf(&sb, "L%d", *limit)
	}
	if offset != nil {
		fmt.Fprintf(&sb, "O%d", *offset)
	}
	return sb.String()
}

func assembleSelectSQL(table, projSQL string, joins []joinSpec, whereSQL string, groupBy []string, havingSQL string, orderBy []orderSpec, limit, offset *int) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(projSQL)
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	for _, j := range joins {
		fmt.Fprintf(&sb, " %s JOIN %s ON %s", j.kind, j.table, j.on)
	}

	if whereSQL != "" {
		sb.WriteString(" ")
		sb.WriteString(whereSQL)
	}

	if len(groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(groupBy, ", "))
	}

	if havingSQL != "" {
		sb.WriteString(" HAVING ")
		sb.WriteString(havingSQL)
	}

	if len(orderBy) > 0 {
		parts := make([]string, len(orderBy))
		for i, o := range orderBy {
			parts[i] = o.column + " " + o.dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *limit)
		if offset != nil {
			fmt.Fprintf(&sb, " OFFSET %d", *offset)
		}
	}

	return sb.String()
}

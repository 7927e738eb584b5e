package querybuilder

import (
	"fmt"
	"strings"
)

// compile dispatches to the emitter matching the AST's statement kind.
func (q *query) compile() (string, []any, error) {
	switch q.kind {
	case kindSelect:
		return q.compileSelect()
	case kindInsert:
		return q.compileInsert()
	case kindUpdate:
		return q.compileUpdate()
	case kindUpsert:
		return q.compileUpsert()
	case kindDelete:
		return q.compileDelete()
	default:
		return "", nil, ErrEmissionInvariant
	}
}

func (q *query) buildWhere() (string, []any, error) {
	if len(q.where) == 0 {
		return "", nil, nil
	}
	sql, params, err := emitNodes(q.where)
	if err != nil {
		return "", nil, err
	}
	return "WHERE " + sql, params, nil
}

func (q *query) compileSelect() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrMissingTable
	}

	if err := q.resolveAggregateAliasFilters(); err != nil {
		return "", nil, err
	}

	projSQL, projParams, err := q.buildProjection()
	if err != nil {
		return "", nil, err
	}

	var params []any
	params = append(params, projParams...)

	whereSQL, whereParams, err := q.buildWhere()
	if err != nil {
		return "", nil, err
	}
	params = append(params, whereParams...)

	var havingSQL string
	if len(q.having) > 0 {
		var havingParams []any
		havingSQL, havingParams, err = emitNodes(q.having)
		if err != nil {
			return "", nil, err
		}
		params = append(params, havingParams...)
	}

	key := selectShapeKey(q.table, projSQL, q.joins, whereSQL, q.groupBy, havingSQL, q.orderBy, q.limit, q.offset)
	sql, ok := selectSQLCache.Get(key)
	if !ok {
		sql = assembleSelectSQL(q.table, projSQL, q.joins, whereSQL, q.groupBy, havingSQL, q.orderBy, q.limit, q.offset)
		selectSQLCache.Add(key, sql)
	}

	return sql, params, nil
}

func (q *query) compileInsert() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrMissingTable
	}
	if len(q.insertRows) == 0 || len(q.insertColumns) == 0 {
		return "", nil, ErrEmptyBulkInsert
	}

	rowPlaceholders := "(" + placeholders(len(q.insertColumns)) + ")"
	rows := make([]string, len(q.insertRows))
	var params []any
	for i, row := range q.insertRows {
		if len(row) != len(q.insertColumns) {
			return "", nil, ErrBulkColumnMismatch
		}
		rows[i] = rowPlaceholders
		params = append(params, row...)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.table, strings.Join(q.insertColumns, ", "), strings.Join(rows, ", "))
	return sql, params, nil
}

func compileAssignments(assigns []assignment) (string, []any) {
	parts := make([]string, len(assigns))
	var params []any
	for i, a := range assigns {
		if raw, ok := a.value.(Raw); ok {
			parts[i] = fmt.Sprintf("%s = %s", a.column, raw.String())
			continue
		}
		parts[i] = fmt.Sprintf("%s = ?", a.column)
		params = append(params, a.value)
	}
	return strings.Join(parts, ", "), params
}

func (q *query) compileUpdate() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrMissingTable
	}
	if len(q.updateSet) == 0 {
		return "", nil, ErrEmissionInvariant
	}

	setSQL, setParams := compileAssignments(q.updateSet)
	params := append([]any{}, setParams...)

	whereSQL, whereParams, err := q.buildWhere()
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", q.table, setSQL)
	if whereSQL != "" {
		sql += " " + whereSQL
		params = append(params, whereParams...)
	}
	return sql, params, nil
}

func (q *query) compileUpsert() (string, []any, error) {
	if len(q.upsertUpdate) == 0 {
		return "", nil, ErrUpsertMissingUpdate
	}
	insertSQL, insertParams, err := q.compileInsert()
	if err != nil {
		return "", nil, err
	}

	setSQL, setParams := compileAssignments(q.upsertUpdate)
	params := append(append([]any{}, insertParams...), setParams...)

	sql := fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s", insertSQL, setSQL)
	return sql, params, nil
}

func (q *query) compileDelete() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrMissingTable
	}
	whereSQL, whereParams, err := q.buildWhere()
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("DELETE FROM %s", q.table)
	if whereSQL != "" {
		sql += " " + whereSQL
	}
	return sql, whereParams, nil
}

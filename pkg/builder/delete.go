package builder

import (
	"fmt"
	"strings"
)

// DeleteFrom starts a DELETE from table, which may carry an alias.
func DeleteFrom(table string) *DeleteQuery {
	return &DeleteQuery{table: table}
}

// Using adds tables to a USING clause for joined deletes.
func (q *DeleteQuery) Using(tables ...string) *DeleteQuery {
	q.using = append(q.using, tables...)
	return q
}

// Where adds a WHERE condition.
func (q *DeleteQuery) Where(condition Condition) *DeleteQuery {
	q.where = append(q.where, condition)
	return q
}

// Returning adds a RETURNING clause.
func (q *DeleteQuery) Returning(columns ...string) *DeleteQuery {
	q.returning = columns
	return q
}

// ToSQL generates the SQL query.
func (q *DeleteQuery) ToSQL() (string, []interface{}, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("delete query has no table")
	}
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("delete query without WHERE is not allowed")
	}

	var sql strings.Builder
	var args []interface{}

	sql.WriteString("DELETE FROM ")
	sql.WriteString(q.table)

	// USING clause
	if len(q.using) > 0 {
		sql.WriteString(" USING ")
		sql.WriteString(strings.Join(q.using, ", "))
	}

	// WHERE clause
	whereBuilder := NewWhereBuilder()
	whereBuilder.conditions = q.where
	whereSQL, whereArgs, err := whereBuilder.Build()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
	}
	sql.WriteString(" ")
	sql.WriteString(whereSQL)
	args = append(args, whereArgs...)

	// RETURNING clause
	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

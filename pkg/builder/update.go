package builder

import (
	"fmt"
	"strings"
)

// Update starts an UPDATE of table.
func Update(table string) *UpdateQuery {
	return &UpdateQuery{table: table}
}

// Set adds a column assignment. Assignments render in call order.
func (q *UpdateQuery) Set(column string, value interface{}) *UpdateQuery {
	q.sets = append(q.sets, setClause{column: column, value: value})
	return q
}

// SetExpr adds an assignment to a raw SQL expression such as now().
func (q *UpdateQuery) SetExpr(column string, expr string) *UpdateQuery {
	q.sets = append(q.sets, setClause{column: column, value: rawExpr(expr)})
	return q
}

// Where adds a WHERE condition.
func (q *UpdateQuery) Where(condition Condition) *UpdateQuery {
	q.where = append(q.where, condition)
	return q
}

// Returning adds a RETURNING clause.
func (q *UpdateQuery) Returning(columns ...string) *UpdateQuery {
	q.returning = columns
	return q
}

// HasSets reports whether any assignment was added.
func (q *UpdateQuery) HasSets() bool {
	return len(q.sets) > 0
}

type rawExpr string

// ToSQL generates the SQL query.
func (q *UpdateQuery) ToSQL() (string, []interface{}, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("update query has no table")
	}
	if len(q.sets) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}

	var sql strings.Builder
	var args []interface{}
	paramNum := 1

	sql.WriteString("UPDATE ")
	sql.WriteString(q.table)
	sql.WriteString(" SET ")

	setParts := make([]string, len(q.sets))
	for i, set := range q.sets {
		if expr, ok := set.value.(rawExpr); ok {
			setParts[i] = fmt.Sprintf("%s = %s", set.column, expr)
			continue
		}
		setParts[i] = fmt.Sprintf("%s = $%d", set.column, paramNum)
		args = append(args, set.value)
		paramNum++
	}
	sql.WriteString(strings.Join(setParts, ", "))

	// WHERE clause
	if len(q.where) > 0 {
		whereBuilder := NewWhereBuilderWithStart(paramNum)
		whereBuilder.conditions = q.where
		whereSQL, whereArgs, err := whereBuilder.Build()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}

		sql.WriteString(" ")
		sql.WriteString(whereSQL)
		args = append(args, whereArgs...)
	}

	// RETURNING clause
	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

package builder

import (
	"fmt"
	"strings"
)

// Select starts a SELECT query over from, which may carry an alias
// ("linknova_bookmark AS b").
func Select(from string) *SelectQuery {
	return &SelectQuery{from: from}
}

// Columns specifies which columns to select.
func (q *SelectQuery) Columns(cols ...string) *SelectQuery {
	q.columns = cols
	return q
}

// Where adds a WHERE condition.
func (q *SelectQuery) Where(condition Condition) *SelectQuery {
	q.where = append(q.where, condition)
	return q
}

// And adds an AND condition (alias for Where).
func (q *SelectQuery) And(condition Condition) *SelectQuery {
	return q.Where(condition)
}

// OrderBy adds an ORDER BY clause.
func (q *SelectQuery) OrderBy(column string, direction OrderDirection) *SelectQuery {
	q.orderBy = append(q.orderBy, OrderBy{
		Column:    column,
		Direction: direction,
		NullsPos:  NullsDefault,
	})
	return q
}

// OrderByAsc adds an ascending ORDER BY clause.
func (q *SelectQuery) OrderByAsc(column string) *SelectQuery {
	return q.OrderBy(column, Asc)
}

// OrderByDesc adds a descending ORDER BY clause.
func (q *SelectQuery) OrderByDesc(column string) *SelectQuery {
	return q.OrderBy(column, Desc)
}

// Limit sets the LIMIT clause.
func (q *SelectQuery) Limit(limit int) *SelectQuery {
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause.
func (q *SelectQuery) Offset(offset int) *SelectQuery {
	q.offset = &offset
	return q
}

// Distinct adds DISTINCT to the query.
func (q *SelectQuery) Distinct() *SelectQuery {
	q.distinct = true
	return q
}

// ForUpdate adds FOR UPDATE to lock selected rows.
func (q *SelectQuery) ForUpdate() *SelectQuery {
	q.forUpdate = true
	return q
}

// GroupBy adds a GROUP BY clause.
func (q *SelectQuery) GroupBy(columns ...string) *SelectQuery {
	q.groupBy = append(q.groupBy, columns...)
	return q
}

// Having adds a HAVING condition.
func (q *SelectQuery) Having(condition Condition) *SelectQuery {
	q.having = append(q.having, condition)
	return q
}

// InnerJoin adds an INNER JOIN clause.
func (q *SelectQuery) InnerJoin(table string, condition string) *SelectQuery {
	q.joins = append(q.joins, Join{Type: InnerJoin, Table: table, Condition: condition})
	return q
}

// LeftJoin adds a LEFT JOIN clause.
func (q *SelectQuery) LeftJoin(table string, condition string) *SelectQuery {
	q.joins = append(q.joins, Join{Type: LeftJoin, Table: table, Condition: condition})
	return q
}

// ToSQL generates the SQL query.
func (q *SelectQuery) ToSQL() (string, []interface{}, error) {
	return q.build(1)
}

// build renders the query with placeholders numbered from paramStart so it
// can be embedded as a subquery.
func (q *SelectQuery) build(paramStart int) (string, []interface{}, error) {
	if q.from == "" {
		return "", nil, fmt.Errorf("select query has no FROM table")
	}

	var sql strings.Builder
	var args []interface{}
	paramNum := paramStart

	// SELECT clause
	sql.WriteString("SELECT ")
	if q.distinct {
		sql.WriteString("DISTINCT ")
	}

	if len(q.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.columns, ", "))
	}

	// FROM clause
	sql.WriteString(" FROM ")
	sql.WriteString(q.from)

	// JOIN clauses
	for _, join := range q.joins {
		sql.WriteString(" ")
		sql.WriteString(string(join.Type))
		sql.WriteString(" ")
		sql.WriteString(join.Table)
		sql.WriteString(" ON ")
		sql.WriteString(join.Condition)
	}

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
		paramNum += len(whereArgs)
	}

	// GROUP BY clause
	if len(q.groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(q.groupBy, ", "))
	}

	// HAVING clause
	if len(q.having) > 0 {
		havingBuilder := NewWhereBuilderWithStart(paramNum)
		havingBuilder.conditions = q.having
		havingSQL, havingArgs, err := havingBuilder.Build()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build HAVING clause: %w", err)
		}

		sql.WriteString(" HAVING ")
		sql.WriteString(strings.TrimPrefix(havingSQL, "WHERE "))
		args = append(args, havingArgs...)
		paramNum += len(havingArgs)
	}

	// ORDER BY clause
	if len(q.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		orderParts := make([]string, len(q.orderBy))
		for i, order := range q.orderBy {
			orderParts[i] = order.Column + " " + string(order.Direction)
			if order.NullsPos != NullsDefault {
				orderParts[i] += " " + string(order.NullsPos)
			}
		}
		sql.WriteString(strings.Join(orderParts, ", "))
	}

	// LIMIT clause
	if q.limit != nil {
		sql.WriteString(fmt.Sprintf(" LIMIT %d", *q.limit))
	}

	// OFFSET clause
	if q.offset != nil {
		sql.WriteString(fmt.Sprintf(" OFFSET %d", *q.offset))
	}

	// FOR UPDATE clause
	if q.forUpdate {
		sql.WriteString(" FOR UPDATE")
	}

	return sql.String(), args, nil
}

package builder

import (
	"fmt"
	"strings"
)

// InsertInto starts an INSERT into table for the given columns.
func InsertInto(table string, columns ...string) *InsertQuery {
	return &InsertQuery{table: table, columns: columns}
}

// Values adds one VALUES row. The values are positional against the columns.
func (q *InsertQuery) Values(values ...interface{}) *InsertQuery {
	q.rows = append(q.rows, values)
	return q
}

// FromUnnest feeds the insert from position-aligned arrays, one per column,
// as INSERT ... SELECT * FROM unnest($1::type[], ...).
func (q *InsertQuery) FromUnnest(arrays ...UnnestArray) *InsertQuery {
	q.unnest = arrays
	return q
}

// Array describes one array parameter for FromUnnest; pgType is the array
// cast such as "text[]".
func Array(values interface{}, pgType string) UnnestArray {
	return UnnestArray{Values: values, Type: pgType}
}

// Returning adds a RETURNING clause.
func (q *InsertQuery) Returning(columns ...string) *InsertQuery {
	q.returning = columns
	return q
}

// OnConflictDoNothing adds ON CONFLICT DO NOTHING. With no columns any
// unique violation is absorbed.
func (q *InsertQuery) OnConflictDoNothing(columns ...string) *InsertQuery {
	q.onConflict = &OnConflict{
		Columns: columns,
		Action:  DoNothing,
	}
	return q
}

// OnConflictDoUpdate adds ON CONFLICT (columns) DO UPDATE SET u = EXCLUDED.u
// for each update column.
func (q *InsertQuery) OnConflictDoUpdate(columns []string, updates ...string) *InsertQuery {
	q.onConflict = &OnConflict{
		Columns: columns,
		Action:  DoUpdate,
		Updates: updates,
	}
	return q
}

// ToSQL generates the SQL query.
func (q *InsertQuery) ToSQL() (string, []interface{}, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("insert query has no table")
	}
	if len(q.columns) == 0 {
		return "", nil, fmt.Errorf("insert query has no columns")
	}
	if len(q.rows) == 0 && len(q.unnest) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}
	if len(q.rows) > 0 && len(q.unnest) > 0 {
		return "", nil, fmt.Errorf("insert query cannot mix VALUES and unnest")
	}

	var sql strings.Builder
	var args []interface{}
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(q.table)
	sql.WriteString(" (")
	sql.WriteString(strings.Join(q.columns, ", "))
	sql.WriteString(")")

	if len(q.unnest) > 0 {
		if len(q.unnest) != len(q.columns) {
			return "", nil, fmt.Errorf("unnest has %d arrays for %d columns", len(q.unnest), len(q.columns))
		}

		placeholders := make([]string, len(q.unnest))
		for i, arr := range q.unnest {
			placeholders[i] = fmt.Sprintf("$%d::%s", paramNum, arr.Type)
			paramNum++
			args = append(args, arr.Values)
		}
		sql.WriteString(" SELECT * FROM unnest(")
		sql.WriteString(strings.Join(placeholders, ", "))
		sql.WriteString(")")
	} else {
		valueClauses := make([]string, len(q.rows))
		for i, row := range q.rows {
			if len(row) != len(q.columns) {
				return "", nil, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(q.columns))
			}

			placeholders := make([]string, len(row))
			for j := range row {
				placeholders[j] = fmt.Sprintf("$%d", paramNum)
				paramNum++
				args = append(args, row[j])
			}

			valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
		}
		sql.WriteString(" VALUES ")
		sql.WriteString(strings.Join(valueClauses, ", "))
	}

	// ON CONFLICT clause
	if q.onConflict != nil {
		sql.WriteString(" ON CONFLICT")

		if len(q.onConflict.Columns) > 0 {
			sql.WriteString(" (")
			sql.WriteString(strings.Join(q.onConflict.Columns, ", "))
			sql.WriteString(")")
		}

		switch q.onConflict.Action {
		case DoNothing:
			sql.WriteString(" DO NOTHING")
		case DoUpdate:
			if len(q.onConflict.Columns) == 0 || len(q.onConflict.Updates) == 0 {
				return "", nil, fmt.Errorf("DO UPDATE requires conflict and update columns")
			}
			updates := make([]string, len(q.onConflict.Updates))
			for i, col := range q.onConflict.Updates {
				updates[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
			}
			sql.WriteString(" ")
			sql.WriteString(string(DoUpdate))
			sql.WriteString(" ")
			sql.WriteString(strings.Join(updates, ", "))
		}
	}

	// RETURNING clause
	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

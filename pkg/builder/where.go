package builder

import (
	"fmt"
	"strings"
)

// WhereBuilder helps build WHERE clauses.
type WhereBuilder struct {
	conditions []Condition
	paramStart int
}

// NewWhereBuilder creates a new WhereBuilder.
func NewWhereBuilder() *WhereBuilder {
	return NewWhereBuilderWithStart(1)
}

// NewWhereBuilderWithStart creates a new WhereBuilder with a starting parameter number.
func NewWhereBuilderWithStart(paramStart int) *WhereBuilder {
	return &WhereBuilder{
		conditions: make([]Condition, 0),
		paramStart: paramStart,
	}
}

// Add adds a condition to the WHERE clause.
func (w *WhereBuilder) Add(condition Condition) {
	w.conditions = append(w.conditions, condition)
}

// Build generates the WHERE clause SQL and arguments.
func (w *WhereBuilder) Build() (string, []interface{}, error) {
	if len(w.conditions) == 0 {
		return "", nil, nil
	}

	sql, args, err := w.buildConditions(w.conditions, w.paramStart)
	if err != nil {
		return "", nil, err
	}

	return "WHERE " + sql, args, nil
}

// buildConditions joins conditions with AND, numbering parameters in order.
func (w *WhereBuilder) buildConditions(conditions []Condition, paramStart int) (string, []interface{}, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}

	var parts []string
	var args []interface{}
	paramNum := paramStart

	for _, cond := range conditions {
		condSQL, condArgs, err := w.buildCondition(cond, paramNum)
		if err != nil {
			return "", nil, err
		}

		parts = append(parts, condSQL)
		args = append(args, condArgs...)
		paramNum += len(condArgs)
	}

	return strings.Join(parts, " AND "), args, nil
}

// buildCondition builds a single condition.
func (w *WhereBuilder) buildCondition(cond Condition, paramNum int) (string, []interface{}, error) {
	column := cond.Column
	operator := cond.Operator
	value := cond.Value

	switch operator {
	case OpEqual:
		return fmt.Sprintf("%s = $%d", column, paramNum), []interface{}{value}, nil

	case OpAny:
		return fmt.Sprintf("%s = ANY($%d)", column, paramNum), []interface{}{value}, nil

	case OpExists:
		subquery, ok := value.(*SelectQuery)
		if !ok || subquery == nil {
			return "", nil, fmt.Errorf("EXISTS operator requires a *SelectQuery")
		}

		sql, args, err := subquery.build(paramNum)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build EXISTS subquery: %w", err)
		}
		return fmt.Sprintf("EXISTS (%s)", sql), args, nil

	case OpExpr:
		values, _ := value.([]interface{})
		return bindMarkers(column, values, paramNum)

	default:
		return "", nil, fmt.Errorf("unknown operator: %s", operator)
	}
}

// bindMarkers replaces each ? in expr with the next positional parameter.
func bindMarkers(expr string, values []interface{}, paramNum int) (string, []interface{}, error) {
	if n := strings.Count(expr, "?"); n != len(values) {
		return "", nil, fmt.Errorf("expression %q has %d markers but %d values", expr, n, len(values))
	}

	var b strings.Builder
	next := paramNum
	for _, r := range expr {
		if r == '?' {
			fmt.Fprintf(&b, "$%d", next)
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), values, nil
}

// Helper functions for building conditions

// Eq creates an equality condition.
func Eq(column string, value interface{}) Condition {
	return Condition{
		Column:   column,
		Operator: OpEqual,
		Value:    value,
	}
}

// Any creates a column = ANY($n) condition bound to one array parameter.
func Any(column string, array interface{}) Condition {
	return Condition{
		Column:   column,
		Operator: OpAny,
		Value:    array,
	}
}

// Exists creates an EXISTS condition over a correlated subquery.
// The subquery's parameters are numbered after those preceding it.
func Exists(subquery *SelectQuery) Condition {
	return Condition{
		Operator: OpExists,
		Value:    subquery,
	}
}

// Expr creates a raw condition; each ? in sql is bound to the next value.
func Expr(sql string, values ...interface{}) Condition {
	return Condition{
		Column:   sql,
		Operator: OpExpr,
		Value:    values,
	}
}
